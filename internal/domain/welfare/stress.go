// Package welfare computes per-individual stress and enrichment summaries
// with threshold and gap alerting, and traffic-light welfare flags.
package welfare

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/okian/behavmetrix/internal/domain/model"
	"github.com/okian/behavmetrix/internal/domain/types"
)

// DefaultStressThreshold is the mean stress that raises an alert.
const DefaultStressThreshold = 8.0

// Point is one value of a time series.
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// StressSummary is the rolling stress state of one individual.
type StressSummary struct {
	Count    int          `json:"count"`
	Mean     float64      `json:"mean"`
	Latest   float64      `json:"latest"`
	LatestAt time.Time    `json:"latest_at"`
	Trend    []Point      `json:"trend"`
	Alert    *types.Alert `json:"alert,omitempty"`
}

// StressEngine summarizes stress samples.
type StressEngine struct {
	threshold float64
	window    time.Duration
	clock     func() time.Time
}

// NewStressEngine creates a StressEngine.
func NewStressEngine(opts ...StressOption) (*StressEngine, error) {
	e := &StressEngine{threshold: DefaultStressThreshold, clock: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	if math.IsNaN(e.threshold) || math.IsInf(e.threshold, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidThreshold, e.threshold)
	}
	if e.window < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWindow, e.window)
	}
	return e, nil
}

// Threshold returns the alert threshold.
func (e *StressEngine) Threshold() float64 { return e.threshold }

// Summarize groups samples per individual and computes each mean over the
// window. A sample contributes its weighted score when present, else its raw
// score. Individuals without samples in the window are absent from the result.
func (e *StressEngine) Summarize(samples []model.StressSample) map[model.IndividualID]StressSummary {
	var cutoff time.Time
	if e.window > 0 {
		cutoff = e.clock().Add(-e.window)
	}

	series := make(map[model.IndividualID][]Point)
	for i := range samples {
		s := &samples[i]
		if s.IndividualID == "" {
			continue
		}
		if !cutoff.IsZero() && s.Timestamp.Before(cutoff) {
			continue
		}
		series[s.IndividualID] = append(series[s.IndividualID], Point{Timestamp: s.Timestamp, Value: s.Value()})
	}

	out := make(map[model.IndividualID]StressSummary, len(series))
	for id, pts := range series {
		sort.SliceStable(pts, func(i, j int) bool { return pts[i].Timestamp.Before(pts[j].Timestamp) })
		var sum float64
		for _, p := range pts {
			sum += p.Value
		}
		last := pts[len(pts)-1]
		st := StressSummary{
			Count:    len(pts),
			Mean:     sum / float64(len(pts)),
			Latest:   last.Value,
			LatestAt: last.Timestamp,
			Trend:    pts,
		}
		if st.Mean >= e.threshold {
			st.Alert = &types.Alert{
				Kind:       types.AlertStress,
				Individual: id,
				Reason:     fmt.Sprintf("average stress score %.1f exceeds threshold %.1f", st.Mean, e.threshold),
				From:       pts[0].Timestamp,
				To:         last.Timestamp,
			}
		}
		out[id] = st
	}
	return out
}
