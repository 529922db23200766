package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/behavmetrix/internal/adapters/repository"
	"github.com/okian/behavmetrix/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var fixture = []string{
	`CREATE TABLE animals (id INTEGER PRIMARY KEY, persistent_id TEXT UNIQUE, name TEXT, cage_id TEXT, sex TEXT,
		welfare_score REAL)`,
	`CREATE TABLE behavior_definitions (id INTEGER PRIMARY KEY, code TEXT UNIQUE, name TEXT, category TEXT)`,
	`CREATE TABLE behavior_logs (id INTEGER PRIMARY KEY, timestamp DATETIME, animal_id INTEGER, behavior_id INTEGER,
		receiver_id INTEGER, interaction_partner_id INTEGER)`,
	`CREATE TABLE stress_logs (id INTEGER PRIMARY KEY, date DATETIME, stress_score INTEGER, weighted_score REAL,
		withdrawal BOOLEAN, fear_grimace BOOLEAN, self_biting BOOLEAN, pacing BOOLEAN, isolation BOOLEAN,
		cortisol_level REAL, animal_id INTEGER)`,
	`CREATE TABLE enrichment_logs (id INTEGER PRIMARY KEY, timestamp DATETIME, duration_minutes REAL,
		animal_id INTEGER, enrichment_item_id INTEGER)`,

	`INSERT INTO animals VALUES (1, 'RM-001', 'Bruno', 'C1', 'M', 72.5), (2, 'RM-002', NULL, 'C1', 'F', NULL),
		(3, 'RM-003', 'Kiko', 'C2', 'F', 35)`,
	`INSERT INTO behavior_definitions VALUES (1, 'AGG', 'Aggression', 'Agonistic'), (2, 'GROOM', 'Grooming', NULL)`,
	`INSERT INTO behavior_logs VALUES
		(1, '2024-01-01 08:00:00', 1, 1, 2, NULL),
		(2, '2024-01-03 09:30:00.250000', 2, 2, NULL, 1),
		(3, '2024-01-03 10:00:00', 3, 2, NULL, NULL)`,
	`INSERT INTO stress_logs VALUES
		(1, '2024-01-02 08:00:00', 3, NULL, 1, 0, 1, 0, 0, 42.0, 1),
		(2, '2024-01-04 08:00:00', 5, 6.5, 0, 0, 0, 0, 0, NULL, 2)`,
	`INSERT INTO enrichment_logs VALUES (1, '2024-01-02 12:00:00', 15.5, 1, 7)`,
}

func seedDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "colony.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = db.Close() }()
	for _, stmt := range fixture {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("seed %q: %v", stmt, err)
		}
	}
	return path
}

func TestSQLiteSource(t *testing.T) {
	ctx := context.Background()
	path := seedDB(t)
	stamp := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	Convey("Given a colony database opened read-only", t, func() {
		src, err := repository.OpenSQLite(ctx, path, repository.WithClock(func() time.Time { return stamp }))
		So(err, ShouldBeNil)
		defer func() { _ = src.Close() }()

		Convey("Then cages are listed as colonies", func() {
			ids, err := src.Colonies(ctx)
			So(err, ShouldBeNil)
			So(ids, ShouldResemble, []string{"C1", "C2"})
		})

		Convey("When loading a cage", func() {
			snap, err := src.Load(ctx, "C1", repository.Window{})
			So(err, ShouldBeNil)

			Convey("Then the roster uses persistent IDs and names", func() {
				So(snap.Colony, ShouldEqual, "C1")
				So(snap.TakenAt, ShouldEqual, stamp)
				So(len(snap.Roster), ShouldEqual, 2)
				So(snap.Roster[0].ID, ShouldEqual, model.IndividualID("RM-001"))
				So(snap.Roster[0].Label, ShouldEqual, "Bruno")
				So(snap.Roster[1].ID, ShouldEqual, model.IndividualID("RM-002"))
				So(snap.Roster[1].Label, ShouldEqual, "")
			})

			Convey("Then welfare scores are carried when recorded", func() {
				So(*snap.Roster[0].WelfareScore, ShouldEqual, 72.5)
				So(snap.Roster[1].WelfareScore, ShouldBeNil)
			})

			Convey("Then behavior rows carry their aliases and codes", func() {
				So(len(snap.Records), ShouldEqual, 2)
				first := snap.Records[0]
				So(first.AnimalID, ShouldEqual, model.IndividualID("RM-001"))
				So(first.ReceiverID, ShouldEqual, model.IndividualID("RM-002"))
				So(first.BehaviorCode, ShouldEqual, "AGG")
				So(first.Category, ShouldEqual, "Agonistic")
				So(first.Timestamp.Equal(time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)), ShouldBeTrue)

				second := snap.Records[1]
				So(second.ReceiverID, ShouldEqual, model.IndividualID(""))
				So(second.InteractionPartnerID, ShouldEqual, model.IndividualID("RM-001"))
				So(second.Category, ShouldEqual, "")
			})

			Convey("Then stress and enrichment samples are read", func() {
				So(len(snap.Stress), ShouldEqual, 2)
				So(snap.Stress[0].Withdrawal, ShouldBeTrue)
				So(snap.Stress[0].SelfBiting, ShouldBeTrue)
				So(*snap.Stress[0].CortisolLevel, ShouldEqual, 42.0)
				So(snap.Stress[0].WeightedScore, ShouldBeNil)
				So(*snap.Stress[1].WeightedScore, ShouldEqual, 6.5)

				So(len(snap.Enrichment), ShouldEqual, 1)
				So(snap.Enrichment[0].DurationMinutes, ShouldEqual, 15.5)
				So(snap.Enrichment[0].ItemID, ShouldEqual, "item-7")
			})
		})

		Convey("When loading with a window", func() {
			snap, err := src.Load(ctx, "C1", repository.Window{Since: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)})

			Convey("Then earlier rows are excluded", func() {
				So(err, ShouldBeNil)
				So(len(snap.Records), ShouldEqual, 1)
				So(len(snap.Stress), ShouldEqual, 1)
				So(snap.Enrichment, ShouldBeEmpty)
			})
		})

		Convey("When loading an unknown cage", func() {
			_, err := src.Load(ctx, "C9", repository.Window{})

			Convey("Then ErrNotFound is returned", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})

	Convey("Given a missing database file", t, func() {
		_, err := repository.OpenSQLite(ctx, filepath.Join(t.TempDir(), "none.db"))

		Convey("Then opening fails without creating it", func() {
			So(errors.Is(err, repository.ErrOpenSource), ShouldBeTrue)
		})
	})
}
