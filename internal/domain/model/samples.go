package model

import "time"

// StressSample is one stress observation for an individual.
type StressSample struct {
	IndividualID  IndividualID `json:"individual_id"`
	Timestamp     time.Time    `json:"timestamp"`
	StressScore   float64      `json:"stress_score"`
	WeightedScore *float64     `json:"weighted_score,omitempty"`
	Withdrawal    bool         `json:"withdrawal,omitempty"`
	FearGrimace   bool         `json:"fear_grimace,omitempty"`
	SelfBiting    bool         `json:"self_biting,omitempty"`
	Pacing        bool         `json:"pacing,omitempty"`
	Isolation     bool         `json:"isolation,omitempty"`
	CortisolLevel *float64     `json:"cortisol_level,omitempty"`
}

// Value returns the weighted score when present, else the raw stress score.
func (s StressSample) Value() float64 { //nolint:gocritic // hugeParam: value receiver keeps samples immutable
	if s.WeightedScore != nil {
		return *s.WeightedScore
	}
	return s.StressScore
}

// EnrichmentSample records one engagement with an enrichment item.
type EnrichmentSample struct {
	IndividualID    IndividualID `json:"individual_id"`
	Timestamp       time.Time    `json:"timestamp"`
	ItemID          string       `json:"item_id,omitempty"`
	DurationMinutes float64      `json:"duration_minutes,omitempty"`
}

// Snapshot is the in-memory working set for one analysis pass. It is fetched
// at the boundary and never mutated by the engine.
type Snapshot struct {
	Colony     string             `json:"colony"`
	TakenAt    time.Time          `json:"taken_at"`
	Roster     []Individual       `json:"roster"`
	Records    []LogRecord        `json:"records"`
	Stress     []StressSample     `json:"stress,omitempty"`
	Enrichment []EnrichmentSample `json:"enrichment,omitempty"`
}
