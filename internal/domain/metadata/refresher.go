package metadata

import (
	"context"
	"sync"
	"time"

	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// defaultInterval is the period between snapshot recomputations.
const defaultInterval = 30 * time.Second

// Source exposes the two index reads the refresher needs. The concrete
// store is adapted to this interface by the service layer.
type Source interface {
	// Count returns the current participant count.
	Count(ctx context.Context) (int, error)

	// Leader returns the top-ranked participant. ok is false when the
	// index is empty.
	Leader(ctx context.Context) (username string, score int64, ok bool, err error)
}

// Refresher recomputes and publishes the metadata snapshot on a fixed
// interval. The first computation fires immediately at startup so readers
// never see a blank snapshot longer than one failed tick. Ticks never
// overlap; a slow tick delays the next one. A failed tick is logged and
// skipped, leaving the previous snapshot visible.
type Refresher struct {
	source   Source
	cache    *Cache
	interval time.Duration
	logger   logger.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// RefresherOption applies a configuration option to the Refresher.
type RefresherOption func(*Refresher)

// WithInterval sets the refresh period.
func WithInterval(interval time.Duration) RefresherOption {
	return func(r *Refresher) {
		if interval > 0 {
			r.interval = interval
		}
	}
}

// WithLogger sets a custom logger for the refresher.
func WithLogger(l logger.Logger) RefresherOption {
	return func(r *Refresher) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRefresher creates a refresher publishing into cache from source.
func NewRefresher(source Source, cache *Cache, opts ...RefresherOption) *Refresher {
	r := &Refresher{
		source:   source,
		cache:    cache,
		interval: defaultInterval,
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Get().Named("refresher")
	}
	return r
}

// Start launches the refresh loop. It returns immediately; the loop runs
// until ctx is canceled or Stop is called.
func (r *Refresher) Start(ctx context.Context) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		// First computation fires immediately so the initial snapshot
		// window is as short as possible.
		r.refresh(ctx)

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-r.stopCh:
				return
			case <-ticker.C:
				r.refresh(ctx)
			}
		}
	}()
}

// Stop shuts the refresh loop down and waits for the in-flight tick.
// Safe to call more than once.
func (r *Refresher) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
	})
	r.wg.Wait()
}

// refresh recomputes the snapshot from the source and publishes it.
// Errors are logged and counted, never propagated; the loop keeps going.
func (r *Refresher) refresh(ctx context.Context) {
	start := time.Now()

	count, err := r.source.Count(ctx)
	if err != nil {
		r.skip(ctx, err)
		return
	}

	snap := &Snapshot{TotalUsers: count, RefreshedAt: time.Now()}
	if count > 0 {
		username, score, ok, err := r.source.Leader(ctx)
		if err != nil {
			r.skip(ctx, err)
			return
		}
		if ok {
			snap.TopUser = &username
			snap.TopScore = &score
		}
	}

	r.cache.Publish(snap)

	ms := float64(time.Since(start).Milliseconds())
	metrics.RecordSnapshotRefresh(ms, float64(time.Now().Unix()))
	r.logger.Debug(ctx, "snapshot published",
		logger.Int("total_users", snap.TotalUsers),
		logger.Duration("took", time.Since(start)),
	)
}

func (r *Refresher) skip(ctx context.Context, err error) {
	metrics.RecordSnapshotRefreshSkipped()
	metrics.RecordErrorByComponent("refresher", "source_error")
	r.logger.Warn(ctx, "snapshot refresh skipped", logger.Error(err))
}
