// Package model contains domain models passed between layers.
package model

import "time"

// IndividualID identifies one tracked subject. Derived scores are keyed by it
// in external mappings; the individual itself carries no analytics state.
type IndividualID string

// Individual is a roster entry.
type Individual struct {
	ID    IndividualID `json:"id"`
	Label string       `json:"label,omitempty"`

	// Latest assessed welfare score, 0 to 100. Nil when never assessed.
	WelfareScore *float64 `json:"welfare_score,omitempty"`
}

// DisplayName returns the label, falling back to the identifier.
func (i Individual) DisplayName() string {
	if i.Label != "" {
		return i.Label
	}
	return string(i.ID)
}

// LogRecord is a raw behavior row as supplied by a storage layer. Different
// revisions of the logging schema name the two parties differently, so every
// alias is optional; the normalizer resolves them.
type LogRecord struct {
	RecordID             string       `json:"record_id,omitempty"`
	ActorID              IndividualID `json:"actor_id,omitempty"`
	AnimalID             IndividualID `json:"animal_id,omitempty"`
	ReceiverID           IndividualID `json:"receiver_id,omitempty"`
	InteractionPartnerID IndividualID `json:"interaction_partner_id,omitempty"`
	BehaviorCode         string       `json:"behavior_code,omitempty"`
	Category             string       `json:"category,omitempty"`
	Timestamp            time.Time    `json:"timestamp,omitempty"`
}

// BehaviorEvent is a normalized observation. Receiver is empty for
// non-dyadic behaviors, which only count toward colony statistics.
type BehaviorEvent struct {
	RecordID  string       `json:"record_id,omitempty"`
	Actor     IndividualID `json:"actor"`
	Receiver  IndividualID `json:"receiver,omitempty"`
	Code      string       `json:"code"`
	Category  string       `json:"category,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// IsDyadic reports whether both parties are known.
func (e BehaviorEvent) IsDyadic() bool { //nolint:gocritic // hugeParam: value receiver keeps events immutable
	return e.Actor != "" && e.Receiver != ""
}
