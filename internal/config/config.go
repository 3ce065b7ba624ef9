// Package config defines service configuration structures and loading.
//
// Conventions:
// - Defaults come from New; Load layers an optional YAML file and env vars.
// - External errors are wrapped via this package's sentinel kinds.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DefaultTop is the leaderboard page size when ?top is omitted.
	DefaultTop int `koanf:"default_top"`

	// MaxLeaderboardLimit caps GET /api/leaderboard?top.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// SnapshotRefreshSeconds sets the metadata refresh period.
	SnapshotRefreshSeconds int `koanf:"snapshot_refresh_seconds"`

	// RetentionTTLHours sets the whole-index inactivity window.
	RetentionTTLHours int `koanf:"retention_ttl_hours"`
}

// New creates a Config with defaults matching the documented behavior:
// a 30 second snapshot refresh and a 24 hour retention window.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		Addr:                   ":8080",
		DefaultTop:             10,
		MaxLeaderboardLimit:    100,
		SnapshotRefreshSeconds: 30,
		RetentionTTLHours:      24,
	}
}
