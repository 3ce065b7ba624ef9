package repository

import "errors"

// Sentinel kinds for store errors.
var (
	// ErrInvalidScore rejects negative scores before the index is touched.
	ErrInvalidScore = errors.New("invalid score")

	// ErrNotFound marks a username that was never submitted or has expired.
	// Callers represent it as absent fields, not as a failure.
	ErrNotFound = errors.New("username not found")

	// ErrUnavailable marks a transient backing-store failure. Retryable by
	// the caller; the snapshot refresher logs it and skips the tick.
	ErrUnavailable = errors.New("store unavailable")

	// ErrInvariantViolation marks an inconsistency in the total order.
	// Fatal kind; never retried or swallowed.
	ErrInvariantViolation = errors.New("ordering invariant violated")
)
