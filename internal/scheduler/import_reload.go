package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MrSnakeDoc/linkbox/internal/domain"
	"github.com/MrSnakeDoc/linkbox/internal/logger"
	"github.com/MrSnakeDoc/linkbox/internal/service"
	"github.com/MrSnakeDoc/linkbox/internal/sources/homepage"
)

// Editors often write a file several times per save.
const watchDebounce = 100 * time.Millisecond

// Importer files import items into the store.
type Importer interface {
	Import(ctx context.Context, items []domain.ImportItem) (service.ImportResult, error)
}

// ImportReloader re-imports a bookmarks.yaml file on start, on every tick,
// on manual trigger and whenever the file changes on disk. Imports only add:
// links already stored (by URL) are left alone.
type ImportReloader struct {
	loader        *homepage.Loader
	mapper        *homepage.Mapper
	importer      Importer
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
	watcher       *fsnotify.Watcher
}

// NewImportReloader creates a new import reloader
func NewImportReloader(
	importFile string,
	importer Importer,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *ImportReloader {
	return &ImportReloader{
		loader:        homepage.NewLoader(importFile),
		mapper:        homepage.NewMapper(),
		importer:      importer,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start imports once, then keeps reloading in the background.
// A failing file watcher only disables change detection.
func (r *ImportReloader) Start(ctx context.Context) error {
	// Load immediately on start
	if err := r.Reload(ctx); err != nil {
		return fmt.Errorf("initial import failed: %w", err)
	}

	var changes <-chan struct{}
	if ch, err := r.watch(); err != nil {
		r.logger.Warn("file watcher unavailable, relying on interval reloads",
			logger.String("file", r.loader.Path()), logger.Error(err))
	} else {
		changes = ch
	}

	go func() {
		var tick <-chan time.Time
		if r.interval > 0 {
			ticker := time.NewTicker(r.interval)
			defer ticker.Stop()
			tick = ticker.C
		}

		for {
			select {
			case <-tick:
				r.reloadLogged(ctx, "interval")
			case <-changes:
				r.reloadLogged(ctx, "file change")
			case <-r.manualTrigger:
				r.logger.Info("manual import reload triggered")
				r.reloadLogged(ctx, "manual")
			case <-r.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader and its file watcher.
func (r *ImportReloader) Stop() {
	close(r.stopCh)
	if r.watcher != nil {
		_ = r.watcher.Close()
	}
}

// Reload reads the import file and imports what is new.
func (r *ImportReloader) Reload(ctx context.Context) error {
	config, err := r.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load import file: %w", err)
	}

	items, err := r.mapper.MapBookmarks(config)
	if err != nil {
		return fmt.Errorf("failed to map bookmarks: %w", err)
	}

	res, err := r.importer.Import(ctx, items)
	if err != nil {
		return err
	}

	r.logger.Info("imported bookmarks",
		logger.String("file", r.loader.Path()),
		logger.Int("items", len(items)),
		logger.Int("links_created", res.LinksCreated),
		logger.Int("folders_created", res.FoldersCreated),
		logger.Int("skipped", res.Skipped))
	return nil
}

func (r *ImportReloader) reloadLogged(ctx context.Context, reason string) {
	if err := r.Reload(ctx); err != nil {
		r.logger.Error("failed to reload import file",
			logger.String("reason", reason),
			logger.Error(err))
	}
}

// watch reports debounced changes to the import file. The parent directory
// is watched because editors often replace the file instead of writing it.
func (r *ImportReloader) watch() (<-chan struct{}, error) {
	target, err := filepath.Abs(r.loader.Path())
	if err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(target)); err != nil {
		_ = w.Close()
		return nil, err
	}
	r.watcher = w

	changes := make(chan struct{}, 1)
	notify := func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	}

	go func() {
		var debounce *time.Timer
		for {
			select {
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				// Fire once the burst of events for a save has settled.
				if debounce == nil {
					debounce = time.AfterFunc(watchDebounce, notify)
				} else {
					debounce.Reset(watchDebounce)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				r.logger.Warn("file watcher error", logger.Error(err))
			}
		}
	}()
	return changes, nil
}
