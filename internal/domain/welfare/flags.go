package welfare

import (
	"fmt"
	"math"

	"github.com/okian/behavmetrix/internal/domain/model"
)

// Flag is the traffic-light welfare status of one individual.
type Flag string

// Welfare flags.
const (
	FlagGreen  Flag = "green"
	FlagYellow Flag = "yellow"
	FlagRed    Flag = "red"
)

// Default welfare score thresholds.
const (
	DefaultWatchThreshold = 60.0
	DefaultAlertThreshold = 40.0
)

// FlagEngine maps welfare scores to flags.
type FlagEngine struct {
	watch float64
	alert float64
}

// NewFlagEngine creates a FlagEngine. The alert threshold must not exceed
// the watch threshold.
func NewFlagEngine(opts ...FlagOption) (*FlagEngine, error) {
	e := &FlagEngine{watch: DefaultWatchThreshold, alert: DefaultAlertThreshold}
	for _, opt := range opts {
		opt(e)
	}
	if math.IsNaN(e.watch) || math.IsInf(e.watch, 0) || math.IsNaN(e.alert) || math.IsInf(e.alert, 0) {
		return nil, fmt.Errorf("%w: watch %v, alert %v", ErrInvalidFlagThresholds, e.watch, e.alert)
	}
	if e.alert > e.watch {
		return nil, fmt.Errorf("%w: alert %v above watch %v", ErrInvalidFlagThresholds, e.alert, e.watch)
	}
	return e, nil
}

// Flag classifies one score. An unassessed individual is yellow.
func (e *FlagEngine) Flag(score *float64) Flag {
	switch {
	case score == nil:
		return FlagYellow
	case *score < e.alert:
		return FlagRed
	case *score < e.watch:
		return FlagYellow
	default:
		return FlagGreen
	}
}

// Flags classifies every roster member. Repeated IDs keep their first entry.
func (e *FlagEngine) Flags(roster []model.Individual) map[model.IndividualID]Flag {
	out := make(map[model.IndividualID]Flag, len(roster))
	for _, ind := range roster {
		if ind.ID == "" {
			continue
		}
		if _, ok := out[ind.ID]; ok {
			continue
		}
		out[ind.ID] = e.Flag(ind.WelfareScore)
	}
	return out
}
