package welfare

import "errors"

// Configuration errors.
var (
	ErrInvalidThreshold = errors.New("welfare: stress threshold must be finite")
	ErrInvalidWindow    = errors.New("welfare: window must not be negative")
	ErrInvalidGap       = errors.New("welfare: enrichment gap must be positive")

	ErrInvalidFlagThresholds = errors.New("welfare: invalid welfare flag thresholds")
)
