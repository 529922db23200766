package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)

	"github.com/okian/behavmetrix/internal/domain/model"
)

const defaultBusyTimeout = 5 * time.Second

// Layouts seen in the colony database. SQLAlchemy writes the first one.
var timeLayouts = []string{ //nolint:gochecknoglobals // read-only table
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// SQLiteSource reads colony snapshots from the animal-facility database.
// Colonies are cages; individuals are identified by their persistent ID.
type SQLiteSource struct {
	db          *sql.DB
	busyTimeout time.Duration
	clock       func() time.Time
}

// OpenSQLite opens path read-only. The file must exist.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLiteSource, error) {
	s := &SQLiteSource{busyTimeout: defaultBusyTimeout, clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenSource, err)
	}
	dsn := fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(%d)", path, s.busyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenSource, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", ErrOpenSource, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s.db = db
	return s, nil
}

// Close closes the database.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

// Colonies lists the distinct cages.
func (s *SQLiteSource) Colonies(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT cage_id FROM animals WHERE cage_id IS NOT NULL ORDER BY cage_id`)
	if err != nil {
		return nil, fmt.Errorf("%w: colonies: %w", ErrQuery, err)
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: colonies: %w", ErrQuery, err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: colonies: %w", ErrQuery, err)
	}
	return out, nil
}

// Load reads one cage.
func (s *SQLiteSource) Load(ctx context.Context, colony string, w Window) (model.Snapshot, error) {
	snap := model.Snapshot{Colony: colony, TakenAt: s.clock()}

	roster, err := s.roster(ctx, colony)
	if err != nil {
		return model.Snapshot{}, err
	}
	if len(roster) == 0 {
		return model.Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, colony)
	}
	snap.Roster = roster

	if snap.Records, err = s.records(ctx, colony); err != nil {
		return model.Snapshot{}, err
	}
	if snap.Stress, err = s.stress(ctx, colony); err != nil {
		return model.Snapshot{}, err
	}
	if snap.Enrichment, err = s.enrichment(ctx, colony); err != nil {
		return model.Snapshot{}, err
	}
	return filter(snap, w), nil
}

func (s *SQLiteSource) roster(ctx context.Context, colony string) ([]model.Individual, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT persistent_id, name, welfare_score FROM animals WHERE cage_id = ? ORDER BY persistent_id`, colony)
	if err != nil {
		return nil, fmt.Errorf("%w: roster: %w", ErrQuery, err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Individual
	for rows.Next() {
		var id string
		var name sql.NullString
		var welfare sql.NullFloat64
		if err := rows.Scan(&id, &name, &welfare); err != nil {
			return nil, fmt.Errorf("%w: roster: %w", ErrQuery, err)
		}
		out = append(out, model.Individual{
			ID:           model.IndividualID(id),
			Label:        name.String,
			WelfareScore: nullFloat(welfare),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: roster: %w", ErrQuery, err)
	}
	return out, nil
}

func (s *SQLiteSource) records(ctx context.Context, colony string) ([]model.LogRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT bl.id, a.persistent_id, r.persistent_id, p.persistent_id, bd.code, bd.category, bl.timestamp
		FROM behavior_logs bl
		JOIN animals a ON a.id = bl.animal_id
		LEFT JOIN animals r ON r.id = bl.receiver_id
		LEFT JOIN animals p ON p.id = bl.interaction_partner_id
		LEFT JOIN behavior_definitions bd ON bd.id = bl.behavior_id
		WHERE a.cage_id = ?
		ORDER BY bl.timestamp, bl.id`, colony)
	if err != nil {
		return nil, fmt.Errorf("%w: behavior logs: %w", ErrQuery, err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.LogRecord
	for rows.Next() {
		var (
			id                       int64
			animal                   string
			receiver, partner        sql.NullString
			code, category, rawStamp sql.NullString
		)
		if err := rows.Scan(&id, &animal, &receiver, &partner, &code, &category, &rawStamp); err != nil {
			return nil, fmt.Errorf("%w: behavior logs: %w", ErrQuery, err)
		}
		ts, err := parseTime(rawStamp)
		if err != nil {
			return nil, fmt.Errorf("%w: behavior log %d: %w", ErrQuery, id, err)
		}
		out = append(out, model.LogRecord{
			RecordID:             fmt.Sprintf("bl-%d", id),
			AnimalID:             model.IndividualID(animal),
			ReceiverID:           model.IndividualID(receiver.String),
			InteractionPartnerID: model.IndividualID(partner.String),
			BehaviorCode:         code.String,
			Category:             category.String,
			Timestamp:            ts,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: behavior logs: %w", ErrQuery, err)
	}
	return out, nil
}

func (s *SQLiteSource) stress(ctx context.Context, colony string) ([]model.StressSample, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.persistent_id, sl.date, sl.stress_score, sl.weighted_score,
		       sl.withdrawal, sl.fear_grimace, sl.self_biting, sl.pacing, sl.isolation, sl.cortisol_level
		FROM stress_logs sl
		JOIN animals a ON a.id = sl.animal_id
		WHERE a.cage_id = ?
		ORDER BY sl.date, sl.id`, colony)
	if err != nil {
		return nil, fmt.Errorf("%w: stress logs: %w", ErrQuery, err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.StressSample
	for rows.Next() {
		var (
			animal                                  string
			rawStamp                                sql.NullString
			score                                   sql.NullFloat64
			weighted, cortisol                      sql.NullFloat64
			withdrawal, grimace, biting, pace, isol sql.NullBool
		)
		if err := rows.Scan(&animal, &rawStamp, &score, &weighted,
			&withdrawal, &grimace, &biting, &pace, &isol, &cortisol); err != nil {
			return nil, fmt.Errorf("%w: stress logs: %w", ErrQuery, err)
		}
		ts, err := parseTime(rawStamp)
		if err != nil {
			return nil, fmt.Errorf("%w: stress log: %w", ErrQuery, err)
		}
		out = append(out, model.StressSample{
			IndividualID:  model.IndividualID(animal),
			Timestamp:     ts,
			StressScore:   score.Float64,
			WeightedScore: nullFloat(weighted),
			Withdrawal:    withdrawal.Bool,
			FearGrimace:   grimace.Bool,
			SelfBiting:    biting.Bool,
			Pacing:        pace.Bool,
			Isolation:     isol.Bool,
			CortisolLevel: nullFloat(cortisol),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: stress logs: %w", ErrQuery, err)
	}
	return out, nil
}

func (s *SQLiteSource) enrichment(ctx context.Context, colony string) ([]model.EnrichmentSample, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.persistent_id, el.timestamp, el.enrichment_item_id, el.duration_minutes
		FROM enrichment_logs el
		JOIN animals a ON a.id = el.animal_id
		WHERE a.cage_id = ?
		ORDER BY el.timestamp, el.id`, colony)
	if err != nil {
		return nil, fmt.Errorf("%w: enrichment logs: %w", ErrQuery, err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.EnrichmentSample
	for rows.Next() {
		var (
			animal   string
			rawStamp sql.NullString
			item     sql.NullInt64
			minutes  sql.NullFloat64
		)
		if err := rows.Scan(&animal, &rawStamp, &item, &minutes); err != nil {
			return nil, fmt.Errorf("%w: enrichment logs: %w", ErrQuery, err)
		}
		ts, err := parseTime(rawStamp)
		if err != nil {
			return nil, fmt.Errorf("%w: enrichment log: %w", ErrQuery, err)
		}
		e := model.EnrichmentSample{
			IndividualID:    model.IndividualID(animal),
			Timestamp:       ts,
			DurationMinutes: minutes.Float64,
		}
		if item.Valid {
			e.ItemID = fmt.Sprintf("item-%d", item.Int64)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: enrichment logs: %w", ErrQuery, err)
	}
	return out, nil
}

// parseTime accepts the layouts in timeLayouts, interpreted as UTC. NULL
// yields the zero time.
func parseTime(v sql.NullString) (time.Time, error) {
	s := strings.TrimSpace(v.String)
	if !v.Valid || s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("unrecognized timestamp " + s)
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
