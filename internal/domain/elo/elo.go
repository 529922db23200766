// Package elo implements the pairwise rating updater: dominance events are
// replayed in timestamp order and every encounter moves the winner's and the
// loser's ratings by equal and opposite amounts.
package elo

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/okian/behavmetrix/internal/domain/model"
	"github.com/okian/behavmetrix/internal/domain/outcome"
	"github.com/okian/behavmetrix/internal/domain/types"
)

// Default rating configuration constants.
const (
	DefaultBaseScore            = 1000.0
	DefaultKFactor              = 24.0
	DefaultInstabilityThreshold = 50.0

	logisticDivisor = 400.0
)

// Alert reasons.
const (
	ReasonRapidRise = "rapid rise"
	ReasonRapidDrop = "rapid drop"
)

// Config holds the rating parameters.
type Config struct {
	BaseScore            float64
	KFactor              float64
	InstabilityThreshold float64
	Vocabulary           Vocabulary
}

// DefaultConfig returns the default parameters.
func DefaultConfig() Config {
	return Config{
		BaseScore:            DefaultBaseScore,
		KFactor:              DefaultKFactor,
		InstabilityThreshold: DefaultInstabilityThreshold,
		Vocabulary:           DefaultVocabulary(),
	}
}

// Validate reports configuration errors; these indicate a caller bug and
// must be surfaced before any event is processed.
func (c Config) Validate() error {
	switch {
	case math.IsNaN(c.BaseScore) || math.IsInf(c.BaseScore, 0):
		return fmt.Errorf("%w: base score must be finite", ErrInvalidConfig)
	case !(c.KFactor > 0) || math.IsInf(c.KFactor, 0):
		return fmt.Errorf("%w: k-factor must be positive, got %v", ErrInvalidConfig, c.KFactor)
	case !(c.InstabilityThreshold >= 0):
		return fmt.Errorf("%w: instability threshold must not be negative, got %v", ErrInvalidConfig, c.InstabilityThreshold)
	}
	if err := c.Vocabulary.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// TimelineEntry captures both participants' ratings right after one event.
type TimelineEntry struct {
	Timestamp    time.Time          `json:"timestamp"`
	Code         string             `json:"code"`
	Winner       model.IndividualID `json:"winner"`
	Loser        model.IndividualID `json:"loser"`
	WinnerRating float64            `json:"winner_rating"`
	LoserRating  float64            `json:"loser_rating"`
	WinnerDelta  float64            `json:"winner_delta"`
	LoserDelta   float64            `json:"loser_delta"`
}

// Result is the outcome of one rating pass. Nothing in it is shared with
// another pass.
type Result struct {
	Ratings   map[model.IndividualID]float64
	Flags     map[model.IndividualID]struct{}
	Alerts    map[model.IndividualID]types.Alert
	Timeline  []TimelineEntry
	Matrix    *outcome.Matrix
	Processed int
	Skipped   int
}

// Flagged reports whether id was flagged as unstable.
func (r *Result) Flagged(id model.IndividualID) bool {
	_, ok := r.Flags[id]
	return ok
}

// Updater replays dominance events into ratings. It is immutable after
// construction and safe to share; every Run owns its working state.
type Updater struct {
	cfg Config
}

// New creates an Updater, failing fast on invalid configuration.
func New(opts ...Option) (*Updater, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Updater{cfg: cfg}, nil
}

// Config returns the updater's configuration.
func (u *Updater) Config() Config { return u.cfg }

// ExpectedScore is the logistic win expectation of a rating against b.
func ExpectedScore(a, b float64) float64 {
	return 1 / (1 + math.Pow(10, (b-a)/logisticDivisor))
}

type ranked struct {
	event     model.BehaviorEvent
	direction Direction
}

// Run processes events, which may be in any order. Events that are not
// dyadic or whose code is outside the vocabulary are skipped. Equal
// timestamps keep their input order.
func (u *Updater) Run(events []model.BehaviorEvent) *Result {
	res := &Result{
		Ratings: make(map[model.IndividualID]float64),
		Flags:   make(map[model.IndividualID]struct{}),
		Alerts:  make(map[model.IndividualID]types.Alert),
		Matrix:  outcome.New(),
	}

	queue := make([]ranked, 0, len(events))
	for i := range events {
		dir, ok := u.cfg.Vocabulary[events[i].Code]
		if !ok || !events[i].IsDyadic() || events[i].Actor == events[i].Receiver {
			res.Skipped++
			continue
		}
		queue = append(queue, ranked{event: events[i], direction: dir})
	}
	sort.SliceStable(queue, func(a, b int) bool {
		return queue[a].event.Timestamp.Before(queue[b].event.Timestamp)
	})

	// Rating of each individual right after its previous update.
	previous := make(map[model.IndividualID]float64)
	rating := func(id model.IndividualID) float64 {
		if r, ok := res.Ratings[id]; ok {
			return r
		}
		return u.cfg.BaseScore
	}

	for _, q := range queue {
		winner, loser := q.event.Actor, q.event.Receiver
		if q.direction == ReceiverWins {
			winner, loser = loser, winner
		}

		rw, rl := rating(winner), rating(loser)
		expected := ExpectedScore(rw, rl)
		dw := u.cfg.KFactor * (1 - expected)
		dl := u.cfg.KFactor * (expected - 1)
		res.Ratings[winner] = rw + dw
		res.Ratings[loser] = rl + dl

		res.Matrix.Record(winner, loser)

		u.checkSwing(res, previous, winner, q.event.Timestamp)
		u.checkSwing(res, previous, loser, q.event.Timestamp)

		res.Timeline = append(res.Timeline, TimelineEntry{
			Timestamp:    q.event.Timestamp,
			Code:         q.event.Code,
			Winner:       winner,
			Loser:        loser,
			WinnerRating: res.Ratings[winner],
			LoserRating:  res.Ratings[loser],
			WinnerDelta:  dw,
			LoserDelta:   dl,
		})
		res.Processed++
	}
	return res
}

// checkSwing compares id's new rating with its rating after its previous
// update. An individual's first update has nothing to compare against.
func (u *Updater) checkSwing(res *Result, previous map[model.IndividualID]float64, id model.IndividualID, at time.Time) {
	current := res.Ratings[id]
	last, ok := previous[id]
	previous[id] = current
	if !ok {
		return
	}
	change := current - last
	if math.Abs(change) <= u.cfg.InstabilityThreshold {
		return
	}

	alert := types.Alert{
		Kind:       types.AlertRapidRise,
		Individual: id,
		Reason:     ReasonRapidRise,
		To:         at,
	}
	if change < 0 {
		alert.Kind = types.AlertRapidDrop
		alert.Reason = ReasonRapidDrop
	}
	res.Flags[id] = struct{}{}
	res.Alerts[id] = alert
}
