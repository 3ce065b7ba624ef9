// Package repository defines the ranking store interface and errors.
package repository

import "context"

// Entry represents a leaderboard row held by the store.
type Entry struct {
	Rank     int
	Username string
	Score    int64
}

// Store provides read/write access to the ranking state. Implementations
// must be safe for concurrent use; every call observes one consistent
// ordering of the index.
type Store interface {
	// Upsert inserts or replaces the score for username and returns the
	// entry with its 1-based rank immediately after the write. A negative
	// score fails with ErrInvalidScore before the index is touched. A
	// successful write extends the retention window.
	Upsert(ctx context.Context, username string, score int64) (Entry, error)

	// Rank returns the current score and 1-based rank for username.
	// Returns ErrNotFound if the username was never submitted or the
	// index has expired.
	Rank(ctx context.Context, username string) (Entry, error)

	// TopN returns the first n entries under the total order
	// (score descending, username ascending). n <= 0 yields an empty
	// slice; n beyond the participant count yields all entries.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of participants currently ranked.
	Count(ctx context.Context) (int, error)
}
