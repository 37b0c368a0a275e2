package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/multiverse/internal/logger"
)

// Reloadable re-hydrates in-memory state from storage.
type Reloadable interface {
	Reload(ctx context.Context)
	Count() int
}

// StoreReloader re-reads favorites from the shared backend so writes made by
// another process (the import command, a second instance) become visible.
type StoreReloader struct {
	store         Reloadable
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewStoreReloader creates a new reloader. interval <= 0 disables the
// periodic reload; the manual trigger still works.
func NewStoreReloader(
	store Reloadable,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *StoreReloader {
	return &StoreReloader{
		store:         store,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start begins the reload loop
func (sr *StoreReloader) Start(ctx context.Context) error {
	go func() {
		var tick <-chan time.Time
		if sr.interval > 0 {
			ticker := time.NewTicker(sr.interval)
			defer ticker.Stop()
			tick = ticker.C
		}

		for {
			select {
			case <-tick:
				sr.Reload(ctx)
			case <-sr.manualTrigger:
				sr.logger.Info("manual reload triggered")
				sr.Reload(ctx)
			case <-sr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (sr *StoreReloader) Stop() {
	close(sr.stopCh)
}

// Reload re-hydrates the store once
func (sr *StoreReloader) Reload(ctx context.Context) {
	before := sr.store.Count()
	sr.store.Reload(ctx)
	after := sr.store.Count()

	if before != after {
		sr.logger.Info("favorites reloaded from storage",
			logger.Int("before", before),
			logger.Int("after", after))
	} else {
		sr.logger.Debug("favorites reloaded from storage",
			logger.Int("count", after))
	}
}
