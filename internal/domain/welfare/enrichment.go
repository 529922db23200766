package welfare

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/okian/behavmetrix/internal/domain/model"
	"github.com/okian/behavmetrix/internal/domain/types"
)

// DefaultGapDays is the longest tolerated interval between enrichment entries.
const DefaultGapDays = 3

const day = 24 * time.Hour

// EnrichmentSummary is the engagement history of one individual.
type EnrichmentSummary struct {
	Entries    []time.Time   `json:"entries"`
	Sessions   int           `json:"sessions"`
	Minutes    float64       `json:"minutes"`
	LongestGap time.Duration `json:"longest_gap"`
	Alerts     []types.Alert `json:"alerts,omitempty"`
}

// EnrichmentEngine summarizes enrichment samples.
type EnrichmentEngine struct {
	gapDays int
	clock   func() time.Time
}

// NewEnrichmentEngine creates an EnrichmentEngine.
func NewEnrichmentEngine(opts ...EnrichmentOption) (*EnrichmentEngine, error) {
	e := &EnrichmentEngine{gapDays: DefaultGapDays, clock: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	if e.gapDays <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidGap, e.gapDays)
	}
	return e, nil
}

// GapDays returns the configured gap in days.
func (e *EnrichmentEngine) GapDays() int { return e.gapDays }

// Summarize orders each individual's entries chronologically. A "gap" alert
// is raised for every consecutive interval longer than the gap, and a
// "stale" alert when the latest entry is older than the gap relative to now.
// The two are independent.
func (e *EnrichmentEngine) Summarize(samples []model.EnrichmentSample) map[model.IndividualID]EnrichmentSummary {
	now := e.clock()
	limit := time.Duration(e.gapDays) * day

	grouped := make(map[model.IndividualID][]model.EnrichmentSample)
	for i := range samples {
		if samples[i].IndividualID == "" {
			continue
		}
		grouped[samples[i].IndividualID] = append(grouped[samples[i].IndividualID], samples[i])
	}

	out := make(map[model.IndividualID]EnrichmentSummary, len(grouped))
	for id, ss := range grouped {
		sort.SliceStable(ss, func(i, j int) bool { return ss[i].Timestamp.Before(ss[j].Timestamp) })

		sum := EnrichmentSummary{
			Entries:  make([]time.Time, 0, len(ss)),
			Sessions: len(ss),
		}
		var minutes float64
		for i, s := range ss {
			sum.Entries = append(sum.Entries, s.Timestamp)
			if s.DurationMinutes > 0 {
				minutes += s.DurationMinutes
			}
			if i == 0 {
				continue
			}
			prev := ss[i-1].Timestamp
			span := s.Timestamp.Sub(prev)
			if span > sum.LongestGap {
				sum.LongestGap = span
			}
			if span > limit {
				sum.Alerts = append(sum.Alerts, types.Alert{
					Kind:       types.AlertEnrichGap,
					Individual: id,
					Reason:     fmt.Sprintf("no enrichment for %.1f days (limit %d)", span.Hours()/24, e.gapDays),
					From:       prev,
					To:         s.Timestamp,
					Span:       span,
				})
			}
		}
		sum.Minutes = math.Round(minutes*10) / 10

		latest := ss[len(ss)-1].Timestamp
		if idle := now.Sub(latest); idle > limit {
			sum.Alerts = append(sum.Alerts, types.Alert{
				Kind:       types.AlertEnrichStale,
				Individual: id,
				Reason:     fmt.Sprintf("last enrichment %.1f days ago (limit %d)", idle.Hours()/24, e.gapDays),
				From:       latest,
				To:         now,
				Span:       idle,
			})
		}
		out[id] = sum
	}
	return out
}
