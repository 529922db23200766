package elo

import (
	"fmt"
	"sort"
	"strings"
)

// Direction says which party of a dyadic event is treated as dominant.
type Direction int

const (
	// ActorWins: the actor dominates the receiver (aggression, displays).
	ActorWins Direction = iota + 1
	// ReceiverWins: the actor submits, so the receiver is dominant.
	ReceiverWins
)

// String returns the configuration spelling of d.
func (d Direction) String() string {
	switch d {
	case ActorWins:
		return "actor"
	case ReceiverWins:
		return "receiver"
	default:
		return "unknown"
	}
}

// ParseDirection accepts "actor" or "receiver" (case-insensitive).
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "actor":
		return ActorWins, nil
	case "receiver":
		return ReceiverWins, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedDirection, s)
	}
}

// Vocabulary maps a behavior code to the direction of dominance it implies.
// Codes absent from the vocabulary do not take part in rating updates.
type Vocabulary map[string]Direction

// DefaultVocabulary returns aggression and dominance displays as wins for
// the actor and submission as a win for the receiver.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		"AGG": ActorWins,
		"DOM": ActorWins,
		"SUB": ReceiverWins,
	}
}

// ParseVocabulary builds a Vocabulary from configuration values such as
// {"AGG": "actor", "SUB": "receiver"}. Codes are upper-cased.
func ParseVocabulary(raw map[string]string) (Vocabulary, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyVocabulary
	}
	v := make(Vocabulary, len(raw))
	for code, dir := range raw {
		c := strings.ToUpper(strings.TrimSpace(code))
		if c == "" {
			return nil, ErrEmptyCode
		}
		d, err := ParseDirection(dir)
		if err != nil {
			return nil, fmt.Errorf("code %s: %w", c, err)
		}
		v[c] = d
	}
	return v, nil
}

// Validate checks that every entry is usable.
func (v Vocabulary) Validate() error {
	if len(v) == 0 {
		return ErrEmptyVocabulary
	}
	for code, dir := range v {
		if strings.TrimSpace(code) == "" {
			return ErrEmptyCode
		}
		if dir != ActorWins && dir != ReceiverWins {
			return fmt.Errorf("%w: code %s", ErrUnsupportedDirection, code)
		}
	}
	return nil
}

// Codes returns the vocabulary codes, sorted.
func (v Vocabulary) Codes() []string {
	codes := make([]string, 0, len(v))
	for c := range v {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

func (v Vocabulary) clone() Vocabulary {
	out := make(Vocabulary, len(v))
	for c, d := range v {
		out[strings.ToUpper(c)] = d
	}
	return out
}
