// Package types contains common types used across the application
package types

import (
	"time"

	"github.com/okian/behavmetrix/internal/domain/model"
)

// Entry represents one row of the dominance hierarchy
type Entry struct {
	Rank         int                `json:"rank"`
	IndividualID model.IndividualID `json:"individual_id"`
	Label        string             `json:"label,omitempty"`
	Rating       float64            `json:"rating"`
	DavidsScore  float64            `json:"davids_score"`
	Unstable     bool               `json:"unstable,omitempty"`
	Observed     bool               `json:"observed"`
}

// AlertKind classifies an alert.
type AlertKind string

// Alert kinds raised by the analytics engines.
const (
	AlertRapidRise   AlertKind = "rapid_rise"
	AlertRapidDrop   AlertKind = "rapid_drop"
	AlertStress      AlertKind = "stress"
	AlertEnrichGap   AlertKind = "gap"
	AlertEnrichStale AlertKind = "stale"
)

// Alert is a human-readable flag raised for one individual. From/To/Span are
// set for interval alerts only.
type Alert struct {
	Kind       AlertKind          `json:"kind"`
	Individual model.IndividualID `json:"individual_id"`
	Reason     string             `json:"reason"`
	From       time.Time          `json:"from,omitempty"`
	To         time.Time          `json:"to,omitempty"`
	Span       time.Duration      `json:"span,omitempty"`
}
