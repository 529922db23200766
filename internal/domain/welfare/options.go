package welfare

import "time"

// StressOption applies a configuration option to the StressEngine.
type StressOption func(*StressEngine)

// WithStressThreshold sets the mean stress at or above which an alert fires.
func WithStressThreshold(v float64) StressOption {
	return func(e *StressEngine) {
		e.threshold = v
	}
}

// WithWindow restricts summaries to samples no older than d before the
// clock's now. Zero uses every supplied sample.
func WithWindow(d time.Duration) StressOption {
	return func(e *StressEngine) {
		e.window = d
	}
}

// WithStressClock sets the clock used to anchor the window.
func WithStressClock(clock func() time.Time) StressOption {
	return func(e *StressEngine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// EnrichmentOption applies a configuration option to the EnrichmentEngine.
type EnrichmentOption func(*EnrichmentEngine)

// WithGapDays sets the longest tolerated interval between enrichment entries.
func WithGapDays(days int) EnrichmentOption {
	return func(e *EnrichmentEngine) {
		e.gapDays = days
	}
}

// WithEnrichmentClock sets the clock used for the staleness check.
func WithEnrichmentClock(clock func() time.Time) EnrichmentOption {
	return func(e *EnrichmentEngine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// FlagOption applies a configuration option to the FlagEngine.
type FlagOption func(*FlagEngine)

// WithWatchThreshold sets the score below which an individual is yellow.
func WithWatchThreshold(v float64) FlagOption {
	return func(e *FlagEngine) {
		e.watch = v
	}
}

// WithAlertThreshold sets the score below which an individual is red.
func WithAlertThreshold(v float64) FlagOption {
	return func(e *FlagEngine) {
		e.alert = v
	}
}
