package commands

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"PriceOracle/internal/cache"
	"PriceOracle/internal/collector"
	"PriceOracle/internal/config"
	"PriceOracle/internal/logger"
	"PriceOracle/internal/metrics"
	"PriceOracle/internal/recorder"
)

// app holds the components shared by every subcommand.
type app struct {
	cfg       *config.Config
	log       *logrus.Logger
	metrics   *metrics.Metrics
	collector *collector.Collector
	recorder  recorder.Recorder
	checks    map[string]func(context.Context) error
	closers   []func() error
}

func newApp(ctx context.Context, cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		log:     log,
		metrics: metrics.NewMetrics(),
		checks:  make(map[string]func(context.Context) error),
	}

	store, err := a.newStore(ctx)
	if err != nil {
		return nil, err
	}
	c := cache.New(store,
		cache.WithDedupe(cfg.Cache.Dedupe),
		cache.WithMetrics(a.metrics),
		cache.WithLogger(logger.WithComponent(log, "cache")),
	)
	log.WithFields(logrus.Fields{
		"backend": cfg.Cache.Backend,
		"dedupe":  c.Dedupe(),
	}).Info("response cache ready")

	fetcher := newFetcher(cfg)
	log.WithField("provider", fetcher.Name()).Info("data source selected")

	a.collector = collector.NewCollector(fetcher, c, cfg.DataSource.HistoryDays, cfg.CacheTTL(), logrus.NewEntry(log))
	a.collector.Metrics = a.metrics
	a.recorder = a.newRecorder()
	return a, nil
}

func (a *app) newStore(ctx context.Context) (cache.Store, error) {
	if a.cfg.Cache.Backend != "redis" {
		return cache.NewMemoryStore(), nil
	}
	r := a.cfg.Cache.Redis
	store, err := cache.NewRedisStore(ctx, r.Addr, r.Password, r.DB, r.Prefix)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	a.closers = append(a.closers, store.Close)
	a.checks["redis"] = store.Health
	a.log.WithField("addr", r.Addr).Info("redis cache connected")
	return store, nil
}

func (a *app) newRecorder() recorder.Recorder {
	if a.cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(a.cfg.Database.SQLitePath, logrus.NewEntry(a.log))
	if err != nil {
		a.log.WithError(err).Warn("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	a.closers = append(a.closers, sr.Close)
	return sr
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	switch cfg.DataSource.Provider {
	case "yahoo":
		return collector.NewYahooFetcher(cfg.DataSource.BaseURL, cfg.Proxy)
	case "mock":
		return &collector.MockFetcher{Price: 100}
	default:
		return collector.NewBybitFetcher(cfg.DataSource.BaseURL, cfg.Proxy)
	}
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.WithError(err).Warn("close")
		}
	}
}
