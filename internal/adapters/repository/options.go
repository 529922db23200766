package repository

import "time"

// Option applies a configuration option to the SQLiteSource.
type Option func(*SQLiteSource)

// WithBusyTimeout sets how long a read waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(s *SQLiteSource) {
		if d > 0 {
			s.busyTimeout = d
		}
	}
}

// WithClock sets the clock stamped on loaded snapshots.
func WithClock(clock func() time.Time) Option {
	return func(s *SQLiteSource) {
		if clock != nil {
			s.clock = clock
		}
	}
}
