package colony_test

import (
	"testing"
	"time"

	"github.com/okian/behavmetrix/internal/domain/colony"
	"github.com/okian/behavmetrix/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func events(codes ...string) []model.BehaviorEvent {
	out := make([]model.BehaviorEvent, 0, len(codes))
	for _, c := range codes {
		out = append(out, model.BehaviorEvent{Actor: "a", Code: c})
	}
	return out
}

func TestAggregate(t *testing.T) {
	Convey("Given a window with 2 GROOM events out of 3", t, func() {
		st := colony.Aggregate(events("GROOM", "GROOM", "AGG"))

		Convey("Then the affiliative share is rounded to 2 decimals", func() {
			So(st.Total, ShouldEqual, 3)
			So(st.AffiliativeCode, ShouldEqual, "GROOM")
			So(st.AffiliativePercent, ShouldEqual, 66.67)
			So(st.Aggression, ShouldEqual, 1)
			So(st.Play, ShouldEqual, 0)
		})
	})

	Convey("Given an empty window", t, func() {
		st := colony.Aggregate(nil)

		Convey("Then the share is zero and nothing divides by zero", func() {
			So(st.Total, ShouldEqual, 0)
			So(st.AffiliativePercent, ShouldEqual, 0.0)
			So(st.Counts, ShouldBeEmpty)
		})
	})

	Convey("Given a custom affiliative code", t, func() {
		st := colony.Aggregate(events("huddle", "PLAY", "ENRICH", "PLAY"), colony.WithAffiliativeCode("huddle"))

		Convey("Then its share is reported", func() {
			So(st.AffiliativeCode, ShouldEqual, "HUDDLE")
			So(st.AffiliativePercent, ShouldEqual, 0.0)
			So(st.Play, ShouldEqual, 2)
			So(st.Enrichment, ShouldEqual, 1)
		})
	})
}

func TestHeatmap(t *testing.T) {
	Convey("Given events on known weekdays", t, func() {
		mon := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
		evs := []model.BehaviorEvent{
			{Actor: "a", Code: "GROOM", Category: "Affiliative", Timestamp: mon},
			{Actor: "a", Code: "GROOM", Category: "Affiliative", Timestamp: mon.Add(time.Hour)},
			{Actor: "a", Code: "PACE", Timestamp: mon.AddDate(0, 0, 1)},
			{Actor: "b", Code: "AGG", Category: "Agonistic", Timestamp: mon},
			{Actor: "a", Timestamp: mon},
		}

		hm := colony.Heatmap(evs, "a")

		Convey("Then counts are grouped by category and weekday for that actor only", func() {
			So(hm["Affiliative"]["Mon"], ShouldEqual, 2)
			So(hm[colony.OtherCategory]["Tue"], ShouldEqual, 1)
			So(hm, ShouldNotContainKey, "Agonistic")
			So(len(hm), ShouldEqual, 2)
		})
	})
}

func TestTrack(t *testing.T) {
	Convey("Given events from two distinct actors", t, func() {
		evs := []model.BehaviorEvent{{Actor: "a"}, {Actor: "a"}, {Actor: "b"}}

		Convey("Then progress counts them against the roster", func() {
			So(colony.Track(5, evs), ShouldResemble, colony.Progress{Observed: 2, Total: 5})
		})
	})
}
