package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/linkbox/internal/index"
	"github.com/MrSnakeDoc/linkbox/internal/logger"
)

// Refresher reloads the in-memory index from the store.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// IndexSyncer loads the store into the memory index on startup and, when
// several instances share a redis store, periodically picks up their writes.
type IndexSyncer struct {
	refresher Refresher
	index     *index.MemoryIndex
	logger    logger.Logger
	interval  time.Duration
	stopCh    chan struct{}
}

// NewIndexSyncer creates a new index syncer. A zero interval disables the
// periodic refresh; Sync still works.
func NewIndexSyncer(
	refresher Refresher,
	idx *index.MemoryIndex,
	log logger.Logger,
	interval time.Duration,
) *IndexSyncer {
	return &IndexSyncer{
		refresher: refresher,
		index:     idx,
		logger:    log,
		interval:  interval,
		stopCh:    make(chan struct{}),
	}
}

// Start syncs once, then keeps syncing every interval.
func (s *IndexSyncer) Start(ctx context.Context) error {
	if err := s.Sync(ctx); err != nil {
		return err
	}
	if s.interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.Sync(ctx); err != nil {
					s.logger.Error("failed to sync index", logger.Error(err))
				}
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// Stop stops the periodic sync.
func (s *IndexSyncer) Stop() {
	close(s.stopCh)
}

// Sync loads links and folders from the store into the memory index.
func (s *IndexSyncer) Sync(ctx context.Context) error {
	s.logger.Debug("syncing store to memory index")

	if err := s.refresher.Refresh(ctx); err != nil {
		return err
	}

	s.logger.Debug("synced memory index",
		logger.Int("links", s.index.Count()),
		logger.Int("folders", s.index.FolderCount()))
	return nil
}
