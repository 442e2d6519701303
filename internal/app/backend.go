package app

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/linkbox/internal/config"
	"github.com/MrSnakeDoc/linkbox/internal/events"
	"github.com/MrSnakeDoc/linkbox/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkbox/internal/logger"
	"github.com/MrSnakeDoc/linkbox/internal/metrics"
	"github.com/MrSnakeDoc/linkbox/internal/redis"
	"github.com/MrSnakeDoc/linkbox/internal/service"
	"github.com/MrSnakeDoc/linkbox/internal/store"
	boltstore "github.com/MrSnakeDoc/linkbox/internal/store/bolt"
	redisstore "github.com/MrSnakeDoc/linkbox/internal/store/redis"
	"github.com/MrSnakeDoc/linkbox/internal/utils"
)

// Backend is the storage side of linkbox: the selected store, the service
// on top of it and the optional event publisher. The CLI uses it directly;
// the server wraps it in an App.
type Backend struct {
	Service *service.Bookmarks
	Metrics *metrics.Metrics
	Pinger  deps.Pinger // nil unless the store is remote

	logger  logger.Logger
	closers []func()
}

// Open connects the configured store and event publisher and loads the
// index once.
func Open(ctx context.Context, cfg *config.Config, log logger.Logger) (*Backend, error) {
	b := &Backend{Metrics: metrics.New(), logger: log}

	kv, err := b.openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	publisher, err := b.openEvents(cfg)
	if err != nil {
		b.Close()
		return nil, err
	}

	b.Service = service.New(service.Deps{
		Store:   kv,
		Events:  publisher,
		Metrics: b.Metrics,
		Logger:  log.Component("service"),
	})
	if err := b.Service.Refresh(ctx); err != nil {
		b.Close()
		return nil, err
	}
	return b, nil
}

func (b *Backend) openStore(ctx context.Context, cfg *config.Config) (store.KeyValueStore, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		b.logger.Warn("using the in-memory store, data is lost on exit")
		return store.NewMemory(), nil

	case config.BackendBolt:
		s, err := boltstore.NewStore(cfg.BoltPath)
		if err != nil {
			return nil, err
		}
		b.logger.Info("bolt store opened", logger.String("path", cfg.BoltPath))
		b.closers = append(b.closers, func() { utils.CloseLogged(s, "bolt", b.logger) })
		return s, nil

	case config.BackendRedis:
		b.logger.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.Connect(ctx, redis.OptionsFromConfig(cfg), b.logger)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() { utils.CloseLogged(client, "redis", b.logger) })
		s := redisstore.NewStore(client)
		b.Pinger = s
		return s, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

func (b *Backend) openEvents(cfg *config.Config) (events.Publisher, error) {
	if cfg.NATSURL == "" {
		return events.Nop{}, nil
	}
	nc, err := events.Connect(cfg.NATSURL)
	if err != nil {
		return nil, err
	}
	b.logger.Info("publishing events to NATS",
		logger.String("url", nc.ConnectedUrlRedacted()),
		logger.String("subject", cfg.NATSSubject))
	b.closers = append(b.closers, nc.Close)
	return events.NewNATSPublisher(nc, cfg.NATSSubject), nil
}

// Close releases connections in reverse order of opening.
func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}
