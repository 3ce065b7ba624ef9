// Package retention tracks the inactivity window attached to the whole
// ranking set. The window is extended on every successful write; once it
// lapses the set is considered logically absent and must be cleared.
package retention

import (
	"time"
)

// DefaultTTL is the inactivity window after which the ranking set expires.
const DefaultTTL = 24 * time.Hour

// Window holds a single rolling expiry deadline. It is not safe for
// concurrent use on its own; callers guard it with the lock protecting
// the structure it is attached to.
type Window struct {
	ttl      time.Duration
	deadline time.Time
	now      func() time.Time
}

// Option applies a configuration option to the Window.
type Option func(*Window)

// WithTTL overrides the inactivity window.
func WithTTL(ttl time.Duration) Option {
	return func(w *Window) {
		if ttl > 0 {
			w.ttl = ttl
		}
	}
}

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(w *Window) {
		if now != nil {
			w.now = now
		}
	}
}

// NewWindow creates a Window whose deadline starts one TTL from now.
func NewWindow(opts ...Option) *Window {
	w := &Window{
		ttl: DefaultTTL,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.deadline = w.now().Add(w.ttl)
	return w
}

// Touch resets the deadline to now + TTL.
func (w *Window) Touch() {
	w.deadline = w.now().Add(w.ttl)
}

// Expired reports whether the window has lapsed without a Touch.
func (w *Window) Expired() bool {
	return w.now().After(w.deadline)
}

// TTL returns the configured inactivity window.
func (w *Window) TTL() time.Duration {
	return w.ttl
}

// Deadline returns the current expiry deadline.
func (w *Window) Deadline() time.Time {
	return w.deadline
}
