// Package colony aggregates colony-level behavior statistics.
package colony

import (
	"math"
	"strings"

	"github.com/okian/behavmetrix/internal/domain/model"
)

// Codes reported in every Stats regardless of occurrence.
const (
	DefaultAffiliativeCode = "GROOM"
	CodeAggression         = "AGG"
	CodeEnrichment         = "ENRICH"
	CodePlay               = "PLAY"
)

// OtherCategory labels events whose behavior carries no category.
const OtherCategory = "Other"

// Stats summarizes one window of events.
type Stats struct {
	Total              int            `json:"total"`
	Counts             map[string]int `json:"counts"`
	AffiliativeCode    string         `json:"affiliative_code"`
	AffiliativePercent float64        `json:"affiliative_percent"`
	Aggression         int            `json:"aggression"`
	Enrichment         int            `json:"enrichment"`
	Play               int            `json:"play"`
}

// Option applies a configuration option to Aggregate.
type Option func(*aggregator)

type aggregator struct {
	affiliative string
}

// WithAffiliativeCode sets the behavior code whose share is reported.
func WithAffiliativeCode(code string) Option {
	return func(a *aggregator) {
		if c := strings.ToUpper(strings.TrimSpace(code)); c != "" {
			a.affiliative = c
		}
	}
}

// Aggregate counts events per behavior code. Every event counts toward the
// total, dyadic or not. The affiliative share is a percentage rounded to 2
// decimals and is 0 for an empty window.
func Aggregate(events []model.BehaviorEvent, opts ...Option) Stats {
	a := aggregator{affiliative: DefaultAffiliativeCode}
	for _, opt := range opts {
		opt(&a)
	}

	st := Stats{
		Total:           len(events),
		Counts:          make(map[string]int),
		AffiliativeCode: a.affiliative,
	}
	for i := range events {
		if events[i].Code == "" {
			continue
		}
		st.Counts[events[i].Code]++
	}
	if st.Total > 0 {
		pct := 100 * float64(st.Counts[a.affiliative]) / float64(st.Total)
		st.AffiliativePercent = math.Round(pct*100) / 100
	}
	st.Aggression = st.Counts[CodeAggression]
	st.Enrichment = st.Counts[CodeEnrichment]
	st.Play = st.Counts[CodePlay]
	return st
}

// Heatmap counts the events acted by id per behavior category and weekday
// ("Mon".."Sun"). Events without a behavior code are ignored.
func Heatmap(events []model.BehaviorEvent, id model.IndividualID) map[string]map[string]int {
	out := make(map[string]map[string]int)
	for i := range events {
		e := &events[i]
		if e.Actor != id || e.Code == "" {
			continue
		}
		cat := e.Category
		if cat == "" {
			cat = OtherCategory
		}
		days, ok := out[cat]
		if !ok {
			days = make(map[string]int)
			out[cat] = days
		}
		days[e.Timestamp.Weekday().String()[:3]]++
	}
	return out
}

// Progress reports how many roster members were observed acting.
type Progress struct {
	Observed int `json:"observed"`
	Total    int `json:"total"`
}

// Track counts distinct actors in events against the roster size.
func Track(rosterSize int, events []model.BehaviorEvent) Progress {
	seen := make(map[model.IndividualID]struct{})
	for i := range events {
		if events[i].Actor != "" {
			seen[events[i].Actor] = struct{}{}
		}
	}
	return Progress{Observed: len(seen), Total: rosterSize}
}
