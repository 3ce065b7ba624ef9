// Package metadata maintains the periodically refreshed leaderboard
// summary: participant count plus the leading score and participant.
// Request handlers read the last published snapshot; only the background
// refresher writes it. The two sides meet at a single atomic pointer, so
// metadata reads never block on index mutation.
package metadata

import "time"

// Snapshot is an immutable point-in-time summary of the ranking set.
// TopScore and TopUser are nil while the set is empty.
type Snapshot struct {
	TotalUsers  int
	TopScore    *int64
	TopUser     *string
	RefreshedAt time.Time
}

// zero is returned to readers before the first publish.
var zero = &Snapshot{}
