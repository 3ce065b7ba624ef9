// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"sync"
	"time"

	repository "github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/domain/metadata"
	"github.com/okian/podium/internal/domain/retention"
	"github.com/okian/podium/internal/domain/types"
	"github.com/okian/podium/pkg/logger"
)

// sourceAdapter adapts the repository.Store interface to metadata.Source.
type sourceAdapter struct {
	store repository.Store
}

func (a *sourceAdapter) Count(ctx context.Context) (int, error) {
	return a.store.Count(ctx)
}

func (a *sourceAdapter) Leader(ctx context.Context) (string, int64, bool, error) {
	top, err := a.store.TopN(ctx, 1)
	if err != nil {
		return "", 0, false, err
	}
	if len(top) == 0 {
		return "", 0, false, nil
	}
	return top[0].Username, top[0].Score, true, nil
}

// Service owns the ranking store, the metadata cache and the background
// refresher. The store handle is acquired in Start and released in Stop;
// nothing in the process holds it globally.
type Service struct {
	mu sync.RWMutex

	// Core components
	board     repository.Store
	meta      *metadata.Cache
	refresher *metadata.Refresher

	// Configuration
	refreshInterval time.Duration
	retentionTTL    time.Duration

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRefreshInterval sets the metadata snapshot refresh period.
func WithRefreshInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.refreshInterval = interval
		}
	}
}

// WithRetentionTTL sets the whole-index inactivity window.
func WithRetentionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.retentionTTL = ttl
		}
	}
}

// WithStore injects a pre-built store, used by tests to substitute a
// failing or instrumented implementation.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.board = store
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		refreshInterval: 30 * time.Second,
		retentionTTL:    retention.DefaultTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the store, the metadata cache and the refresher.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting leaderboard service...")

	if s.board == nil {
		s.board = repository.NewTreapStore(ctx,
			repository.WithRetentionTTL(s.retentionTTL),
		)
	}
	s.meta = metadata.NewCache()
	s.refresher = metadata.NewRefresher(
		&sourceAdapter{store: s.board},
		s.meta,
		metadata.WithInterval(s.refreshInterval),
		metadata.WithLogger(s.logger.Named("refresher")),
	)
	s.refresher.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "leaderboard service started",
		logger.Duration("refresh_interval", s.refreshInterval),
		logger.Duration("retention_ttl", s.retentionTTL),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping leaderboard service...")

	if s.refresher != nil {
		s.refresher.Stop()
	}

	s.started = false
	s.logger.Info(context.Background(), "leaderboard service stopped")
}

// SubmitScore inserts or replaces the score for username and returns the
// resulting entry with its 1-based rank.
func (s *Service) SubmitScore(ctx context.Context, username string, score int64) (types.Entry, error) {
	entry, err := s.board.Upsert(ctx, username, score)
	if err != nil {
		return types.Entry{}, err
	}
	return types.Entry{Rank: entry.Rank, Username: entry.Username, Score: entry.Score}, nil
}

// TopN returns the top n leaderboard entries under the total order.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	entries, err := s.board.TopN(ctx, n)
	if err != nil {
		return nil, err
	}
	out := make([]types.Entry, len(entries))
	for i, e := range entries {
		out[i] = types.Entry{Rank: e.Rank, Username: e.Username, Score: e.Score}
	}
	return out, nil
}

// Rank returns the rank and score for a given username.
// Returns repository.ErrNotFound when the username is unranked.
func (s *Service) Rank(ctx context.Context, username string) (types.Entry, error) {
	entry, err := s.board.Rank(ctx, username)
	if err != nil {
		return types.Entry{}, err
	}
	return types.Entry{Rank: entry.Rank, Username: entry.Username, Score: entry.Score}, nil
}

// Metadata returns the last published snapshot. Never touches the index.
func (s *Service) Metadata(ctx context.Context) *metadata.Snapshot {
	s.mu.RLock()
	meta := s.meta
	s.mu.RUnlock()
	if meta == nil {
		return metadata.NewCache().Read()
	}
	return meta.Read()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":                  s.started,
		"refresh_interval_seconds": int(s.refreshInterval / time.Second),
		"retention_ttl_hours":      int(s.retentionTTL / time.Hour),
	}

	if s.started {
		if count, err := s.board.Count(context.Background()); err == nil {
			stats["total_users"] = count
		}
		snap := s.meta.Read()
		stats["snapshot_refreshed_at"] = snap.RefreshedAt
	}

	return stats
}
