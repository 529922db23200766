// Package analysis holds the result of one full analysis pass over a colony
// snapshot. It is plain data; rendering and persistence belong to callers.
package analysis

import (
	"sort"
	"time"

	"github.com/okian/behavmetrix/internal/domain/colony"
	"github.com/okian/behavmetrix/internal/domain/graph"
	"github.com/okian/behavmetrix/internal/domain/model"
	"github.com/okian/behavmetrix/internal/domain/normalize"
	"github.com/okian/behavmetrix/internal/domain/scoring"
	"github.com/okian/behavmetrix/internal/domain/types"
	"github.com/okian/behavmetrix/internal/domain/welfare"
)

// Report is the outcome of one pass.
type Report struct {
	RunID         string                                           `json:"run_id"`
	Colony        string                                           `json:"colony"`
	TakenAt       time.Time                                        `json:"taken_at"`
	GeneratedAt   time.Time                                        `json:"generated_at"`
	Duration      time.Duration                                    `json:"duration"`
	Normalization normalize.Report                                 `json:"normalization"`
	Dominance     *scoring.DominanceResult                         `json:"dominance"`
	Hierarchy     []types.Entry                                    `json:"hierarchy"`
	Graph         *graph.Graph                                     `json:"graph"`
	Behavior      colony.Stats                                     `json:"behavior"`
	Progress      colony.Progress                                  `json:"progress"`
	Heatmaps      map[model.IndividualID]map[string]map[string]int `json:"heatmaps,omitempty"`
	Stress        map[model.IndividualID]welfare.StressSummary     `json:"stress"`
	Enrichment    map[model.IndividualID]welfare.EnrichmentSummary `json:"enrichment"`
	Welfare       map[model.IndividualID]welfare.Flag              `json:"welfare"`
	Alerts        []types.Alert                                    `json:"alerts"`
}

// CollectAlerts flattens the alerts of every engine in r into r.Alerts,
// ordered by individual, then kind, then start time.
func (r *Report) CollectAlerts() {
	var out []types.Alert
	if r.Dominance != nil {
		for _, a := range r.Dominance.Alerts {
			out = append(out, a)
		}
	}
	for _, s := range r.Stress {
		if s.Alert != nil {
			out = append(out, *s.Alert)
		}
	}
	for _, e := range r.Enrichment {
		out = append(out, e.Alerts...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Individual != out[j].Individual {
			return out[i].Individual < out[j].Individual
		}
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].From.Before(out[j].From)
	})
	r.Alerts = out
}

// AlertCounts tallies r.Alerts per kind.
func (r *Report) AlertCounts() map[types.AlertKind]int {
	out := make(map[types.AlertKind]int)
	for _, a := range r.Alerts {
		out[a.Kind]++
	}
	return out
}

// Unstable returns the number of individuals flagged during the rating pass.
func (r *Report) Unstable() int {
	if r.Dominance == nil {
		return 0
	}
	return len(r.Dominance.InstabilityFlags)
}
