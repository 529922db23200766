// Package normalize turns heterogeneous storage rows into the immutable
// events and samples consumed by the analytics engines.
//
// Defaults that a storage layer would otherwise fill in on insert (missing
// timestamps, the weighted stress score) are applied here, explicitly, so the
// engines never depend on storage hooks.
package normalize

import (
	"math"
	"strings"
	"time"

	"github.com/okian/behavmetrix/internal/domain/dedupe"
	"github.com/okian/behavmetrix/internal/domain/model"
)

// Stress indicator weights.
const (
	weightWithdrawal  = 2.0
	weightFearGrimace = 3.0
	weightSelfBiting  = 4.0
	weightPacing      = 2.0
	weightIsolation   = 1.0
	cortisolDivisor   = 10.0
	cortisolCap       = 5.0
)

// Event extracts a dyadic event from rec. The actor is ActorID, else
// AnimalID; the receiver is ReceiverID, else InteractionPartnerID. It returns
// false when either party is missing. Timestamps are copied as-is.
func Event(rec model.LogRecord) (model.BehaviorEvent, bool) { //nolint:gocritic // hugeParam: records are passed by value
	e := convert(rec)
	if !e.IsDyadic() {
		return model.BehaviorEvent{}, false
	}
	return e, true
}

func convert(rec model.LogRecord) model.BehaviorEvent { //nolint:gocritic // hugeParam: records are passed by value
	actor := rec.ActorID
	if actor == "" {
		actor = rec.AnimalID
	}
	receiver := rec.ReceiverID
	if receiver == "" {
		receiver = rec.InteractionPartnerID
	}
	return model.BehaviorEvent{
		RecordID:  rec.RecordID,
		Actor:     actor,
		Receiver:  receiver,
		Code:      strings.ToUpper(strings.TrimSpace(rec.BehaviorCode)),
		Category:  strings.TrimSpace(rec.Category),
		Timestamp: rec.Timestamp,
	}
}

// Report counts what a normalization pass kept and skipped.
type Report struct {
	Total               int `json:"total"`
	Kept                int `json:"kept"`
	Dyadic              int `json:"dyadic"`
	MissingActor        int `json:"missing_actor"`
	MissingReceiver     int `json:"missing_receiver"`
	Duplicates          int `json:"duplicates"`
	DefaultedTimestamps int `json:"defaulted_timestamps"`
}

// Normalizer applies alias resolution and pre-processing defaults. It holds
// no state between calls.
type Normalizer struct {
	clock func() time.Time
}

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithClock sets the clock used to default missing timestamps.
func WithClock(clock func() time.Time) Option {
	return func(n *Normalizer) {
		if clock != nil {
			n.clock = clock
		}
	}
}

// New creates a Normalizer.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{clock: time.Now}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Records normalizes a behavior log window. Records without an actor are
// dropped; records without a receiver are kept as non-dyadic events so the
// colony aggregator still sees them. Rows repeating a record ID are dropped.
func (n *Normalizer) Records(recs []model.LogRecord) ([]model.BehaviorEvent, Report) {
	rep := Report{Total: len(recs)}
	seen := dedupe.NewInMemoryDeduper()
	now := n.clock()

	out := make([]model.BehaviorEvent, 0, len(recs))
	for i := range recs {
		if seen.SeenAndRecord(recs[i].RecordID) {
			rep.Duplicates++
			continue
		}
		e := convert(recs[i])
		if e.Actor == "" {
			rep.MissingActor++
			continue
		}
		if e.Receiver == "" {
			rep.MissingReceiver++
		} else {
			rep.Dyadic++
		}
		if e.Timestamp.IsZero() {
			e.Timestamp = now
			rep.DefaultedTimestamps++
		}
		out = append(out, e)
	}
	rep.Kept = len(out)
	return out, rep
}

// Stress returns a copy of samples with missing timestamps defaulted and the
// weighted score precomputed where absent.
func (n *Normalizer) Stress(samples []model.StressSample) []model.StressSample {
	now := n.clock()
	out := make([]model.StressSample, 0, len(samples))
	for i := range samples {
		s := samples[i]
		if s.IndividualID == "" {
			continue
		}
		if s.Timestamp.IsZero() {
			s.Timestamp = now
		}
		if s.WeightedScore == nil {
			w := WeightedStress(s)
			s.WeightedScore = &w
		}
		out = append(out, s)
	}
	return out
}

// WeightedStress scores the behavioral indicators of s. When no indicator is
// present the raw stress score is used. The result is rounded to 2 decimals.
func WeightedStress(s model.StressSample) float64 { //nolint:gocritic // hugeParam: samples are passed by value
	var w float64
	if s.Withdrawal {
		w += weightWithdrawal
	}
	if s.FearGrimace {
		w += weightFearGrimace
	}
	if s.SelfBiting {
		w += weightSelfBiting
	}
	if s.Pacing {
		w += weightPacing
	}
	if s.Isolation {
		w += weightIsolation
	}
	// Any non-zero reading counts, negative ones included.
	if s.CortisolLevel != nil && *s.CortisolLevel != 0 {
		w += math.Min(*s.CortisolLevel/cortisolDivisor, cortisolCap)
	}
	if w == 0 {
		w = s.StressScore
	}
	return math.Round(w*100) / 100
}

// Enrichment returns a copy of samples with missing timestamps defaulted.
// Samples without an individual are dropped.
func (n *Normalizer) Enrichment(samples []model.EnrichmentSample) []model.EnrichmentSample {
	now := n.clock()
	out := make([]model.EnrichmentSample, 0, len(samples))
	for _, s := range samples {
		if s.IndividualID == "" {
			continue
		}
		if s.Timestamp.IsZero() {
			s.Timestamp = now
		}
		out = append(out, s)
	}
	return out
}
