package elo

// Option applies a configuration option to the Updater.
type Option func(*Config)

// WithBaseScore sets the rating every individual starts from.
func WithBaseScore(score float64) Option {
	return func(c *Config) {
		c.BaseScore = score
	}
}

// WithKFactor sets the maximum rating change of a single encounter.
func WithKFactor(k float64) Option {
	return func(c *Config) {
		c.KFactor = k
	}
}

// WithInstabilityThreshold sets the per-update change, in points, above
// which an individual is flagged as unstable.
func WithInstabilityThreshold(points float64) Option {
	return func(c *Config) {
		c.InstabilityThreshold = points
	}
}

// WithVocabulary replaces the dominance vocabulary.
func WithVocabulary(v Vocabulary) Option {
	return func(c *Config) {
		if v != nil {
			c.Vocabulary = v.clone()
		}
	}
}
