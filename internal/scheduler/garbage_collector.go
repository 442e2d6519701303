package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/linkbox/internal/logger"
)

const (
	// DefaultGCThreshold is how long a soft-deleted link is kept before purge
	DefaultGCThreshold = 30 * 24 * time.Hour // 30 days
)

// Purger hard-deletes links soft-deleted for longer than olderThan.
type Purger interface {
	PurgeDeleted(ctx context.Context, olderThan time.Duration) (int, error)
}

// GarbageCollector periodically purges soft-deleted links
type GarbageCollector struct {
	purger    Purger
	logger    logger.Logger
	interval  time.Duration
	threshold time.Duration
	stopCh    chan struct{}
}

// NewGarbageCollector creates a new garbage collector
func NewGarbageCollector(
	purger Purger,
	log logger.Logger,
	interval time.Duration,
	threshold time.Duration,
) *GarbageCollector {
	if threshold == 0 {
		threshold = DefaultGCThreshold
	}

	return &GarbageCollector{
		purger:    purger,
		logger:    log,
		interval:  interval,
		threshold: threshold,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the periodic garbage collection process
func (gc *GarbageCollector) Start(ctx context.Context) error {
	// Run immediately on start
	if err := gc.Collect(ctx); err != nil {
		gc.logger.Warn("initial garbage collection failed",
			logger.Error(err))
	}

	if gc.interval <= 0 {
		return nil
	}

	// Start periodic collection
	ticker := time.NewTicker(gc.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := gc.Collect(ctx); err != nil {
					gc.logger.Error("garbage collection failed",
						logger.Error(err))
				}
			case <-gc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the garbage collector
func (gc *GarbageCollector) Stop() {
	close(gc.stopCh)
}

// Collect purges links that have been deleted for longer than the threshold.
// Purged links are also removed from their folder's membership list.
func (gc *GarbageCollector) Collect(ctx context.Context) error {
	gc.logger.Debug("running garbage collection for deleted links")

	purged, err := gc.purger.PurgeDeleted(ctx, gc.threshold)
	if err != nil {
		return err
	}

	if purged > 0 {
		gc.logger.Info("garbage collection completed",
			logger.Int("links_purged", purged),
			logger.Duration("threshold", gc.threshold))
	} else {
		gc.logger.Debug("no links to garbage collect")
	}

	return nil
}
