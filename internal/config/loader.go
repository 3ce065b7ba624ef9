package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if PODIUM_CONFIG is set
//  3. env (prefix PODIUM_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("PODIUM_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: PODIUM_ADDR, PODIUM_DEFAULT_TOP, ...
	// Map env keys like PODIUM_DEFAULT_TOP -> default_top (flat keys),
	// preserving underscores to match the koanf tags on the struct.
	envProvider := env.Provider("PODIUM_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "podium_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	switch {
	case cfg.Addr == "":
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.DefaultTop < 1:
		return nil, fmt.Errorf("%w: default_top must be positive", ErrInvalidConfig)
	case cfg.MaxLeaderboardLimit < cfg.DefaultTop:
		return nil, fmt.Errorf("%w: max_leaderboard_limit below default_top", ErrInvalidConfig)
	case cfg.SnapshotRefreshSeconds < 1:
		return nil, fmt.Errorf("%w: snapshot_refresh_seconds must be positive", ErrInvalidConfig)
	case cfg.RetentionTTLHours < 1:
		return nil, fmt.Errorf("%w: retention_ttl_hours must be positive", ErrInvalidConfig)
	}
	return &cfg, nil
}
