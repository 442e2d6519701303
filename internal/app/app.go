package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/linkbox/internal/config"
	"github.com/MrSnakeDoc/linkbox/internal/httpserver"
	"github.com/MrSnakeDoc/linkbox/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkbox/internal/httpserver/mw"
	"github.com/MrSnakeDoc/linkbox/internal/logger"
	"github.com/MrSnakeDoc/linkbox/internal/scheduler"
	"github.com/MrSnakeDoc/linkbox/internal/version"
)

type App struct {
	cfg      *config.Config
	logger   logger.Logger
	backend  *Backend
	server   *httpserver.Server
	syncer   *scheduler.IndexSyncer
	importer *scheduler.ImportReloader
	gc       *scheduler.GarbageCollector
}

// New opens the backend and wires the background jobs and the HTTP server.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	backend, err := Open(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open backend: %w", err)
	}
	svc := backend.Service

	syncer := scheduler.NewIndexSyncer(svc, svc.Index(), log.Component("index-sync"), cfg.IndexSyncInterval)

	gc := scheduler.NewGarbageCollector(svc, log.Component("gc"), cfg.GCInterval, cfg.GCThreshold)

	var importer *scheduler.ImportReloader
	var reloadTrigger chan struct{}
	if cfg.ImportFile != "" {
		log.Info("import file configured, initializing import reloader",
			logger.String("file", cfg.ImportFile))
		reloadTrigger = make(chan struct{}, 1)
		importer = scheduler.NewImportReloader(cfg.ImportFile, svc, log.Component("import"), cfg.ReloadInterval, reloadTrigger)
	} else {
		log.Info("import file not configured, import reloader disabled")
	}

	d := deps.Deps{
		Logger:       log.Component("http"),
		StartTime:    time.Now(),
		Version:      version.Version,
		Commit:       version.Commit,
		BuildDate:    version.BuildDate,
		GoVersion:    version.GoVersion,
		Service:      svc,
		Metrics:      backend.Metrics,
		Backend:      cfg.Backend,
		AllowedHosts: cfg.AllowedHosts,
		AdminCIDRS:   cfg.AdminCIDRS,
		TrustProxy:   cfg.TrustProxy,
		RateLimit: mw.RateLimitConfig{
			Burst:             cfg.RateLimitBurst,
			RefillPerIPPerMin: cfg.RateLimitRefill,
			MaxEntries:        cfg.RateLimitEntries,
			TrustProxy:        cfg.TrustProxy,
		},
		Store:         backend.Pinger,
		ReloadTrigger: reloadTrigger,
	}

	return &App{
		cfg:      cfg,
		logger:   log,
		backend:  backend,
		server:   httpserver.New(cfg, d),
		syncer:   syncer,
		importer: importer,
		gc:       gc,
	}, nil
}

// Run starts the jobs and the server and blocks until ctx is cancelled,
// SIGINT/SIGTERM arrives or the server fails.
func (a *App) Run(ctx context.Context) error {
	defer a.backend.Close()

	a.logger.Infof("🚀 Starting linkbox %s on %s (store=%s)", version.Version, a.cfg.ListenPort, a.cfg.Backend)
	a.logger.Infof("linkbox %s", version.String())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.syncer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start index syncer: %w", err)
	}
	defer a.syncer.Stop()

	if a.importer != nil {
		if err := a.importer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start import reloader: %w", err)
		}
		defer a.importer.Stop()
		a.logger.Info("import reloader started",
			logger.Duration("interval", a.cfg.ReloadInterval))
	}

	if err := a.gc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start garbage collector: %w", err)
	}
	defer a.gc.Stop()
	a.logger.Info("garbage collector started",
		logger.Duration("interval", a.cfg.GCInterval),
		logger.Duration("threshold", a.cfg.GCThreshold))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.logger.Info("✅ linkbox stopped cleanly")
	return nil
}
