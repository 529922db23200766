// Package dedupe tracks record identifiers seen during one normalization pass.
package dedupe

// Option applies a configuration option to the deduper.
type Option func(*inMemoryDeduper)

// WithMaxSize bounds the number of remembered IDs.
// If maxSize > 0: the oldest IDs are forgotten first once the bound is reached.
// If maxSize <= 0: unbounded (the default for a single pass).
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}
