package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/multiverse/internal/logger"
)

// DefaultSweepInterval is used when no interval is configured
const DefaultSweepInterval = time.Minute

// Sweeper drops expired entries and returns how many it removed.
type Sweeper interface {
	Sweep() int
}

// CacheJanitor periodically evicts expired GraphQL responses
type CacheJanitor struct {
	cache    Sweeper
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewCacheJanitor creates a new cache janitor
func NewCacheJanitor(cache Sweeper, log logger.Logger, interval time.Duration) *CacheJanitor {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	return &CacheJanitor{
		cache:    cache,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic sweep
func (j *CacheJanitor) Start(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				j.Sweep()
			case <-j.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the janitor
func (j *CacheJanitor) Stop() {
	close(j.stopCh)
}

// Sweep runs one eviction pass
func (j *CacheJanitor) Sweep() int {
	removed := j.cache.Sweep()
	if removed > 0 {
		j.logger.Debug("graphql cache swept",
			logger.Int("removed", removed))
	}
	return removed
}
