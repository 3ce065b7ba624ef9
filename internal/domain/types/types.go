// Package types contains common types shared across the application.
package types

// Entry represents one leaderboard row as exposed to API consumers.
type Entry struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Score    int64  `json:"score"`
}
