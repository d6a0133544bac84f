package main

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/bakecake"
	"github.com/aretw0/bakecake/internal/adapters/catalogfile"
	"github.com/aretw0/bakecake/internal/adapters/file"
	"github.com/aretw0/bakecake/internal/adapters/memory"
	"github.com/aretw0/bakecake/internal/adapters/postgres"
	redisstore "github.com/aretw0/bakecake/internal/adapters/redis"
	"github.com/aretw0/bakecake/internal/config"
	"github.com/aretw0/bakecake/internal/logging"
	"github.com/aretw0/bakecake/internal/observability"
)

// app bundles everything a command needs after wiring.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	bot      *bakecake.Bot
	registry *prometheus.Registry
	closers  []func() error
}

// close releases held connections.
func (a *app) close() {
	for _, fn := range a.closers {
		if err := fn(); err != nil {
			a.logger.Warn("failed to close resource", "err", err)
		}
	}
}

// buildApp assembles the bot from the environment configuration. With
// withMetrics set, a Prometheus registry is created and the engine's
// lifecycle hooks feed it.
func buildApp(withMetrics bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:    cfg,
		logger: logging.New(logging.Level(cfg.LogLevel)),
	}

	var stores bakecake.Stores
	if cfg.DatabaseDSN != "" {
		db, err := postgres.Open(cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		stores.Profiles = postgres.NewProfileStore(db)
		stores.Catalog = postgres.NewCatalog(db)
		stores.Cakes = postgres.NewCakeStore(db)
		stores.Orders = postgres.NewOrderStore(db)
	} else {
		catalog, err := catalogfile.Load(cfg.CatalogPath)
		if err != nil {
			return nil, err
		}
		stores.Catalog = catalog
		stores.Profiles = memory.NewProfileStore()
		stores.Cakes = memory.NewCakeStore()
		stores.Orders = memory.NewOrderStore()
	}

	opts := []bakecake.Option{
		bakecake.WithLogger(a.logger),
		bakecake.WithPolicyDocument(cfg.PolicyPath),
		bakecake.WithLockTTL(cfg.LockTTL),
	}

	switch cfg.SessionBackend {
	case config.SessionBackendMemory:
		stores.Sessions = memory.NewSessionStore()
	case config.SessionBackendFile:
		stores.Sessions = file.New(cfg.SessionDir)
	case config.SessionBackendRedis:
		client := backend.NewClient(&backend.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		a.closers = append(a.closers, client.Close)
		stores.Sessions = redisstore.NewFromClient(client, redisstore.WithTTL(cfg.SessionTTL))
		opts = append(opts, bakecake.WithLocker(redisstore.NewLocker(client, "bakecake:")))
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}

	if withMetrics {
		a.registry = prometheus.NewRegistry()
		a.registry.MustRegister(collectors.NewGoCollector())
		metrics := observability.NewMetrics(a.registry)
		opts = append(opts, bakecake.WithLifecycleHooks(metrics.Hooks()))
	}

	bot, err := bakecake.New(stores, opts...)
	if err != nil {
		return nil, err
	}
	a.bot = bot
	return a, nil
}
