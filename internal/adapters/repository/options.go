package repository

import (
	"time"
)

// Option applies a configuration option to the TreapStore.
type Option func(*TreapStore)

// WithRetentionTTL sets the whole-index inactivity window.
func WithRetentionTTL(ttl time.Duration) Option {
	return func(s *TreapStore) {
		if ttl > 0 {
			s.retentionTTL = ttl
		}
	}
}

// WithClock overrides the store's time source, used by retention tests.
func WithClock(now func() time.Time) Option {
	return func(s *TreapStore) {
		if now != nil {
			s.now = now
		}
	}
}
