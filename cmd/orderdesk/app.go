package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/orderdesk/orderdesk/internal/analytics"
	"github.com/orderdesk/orderdesk/internal/bootstrap"
	"github.com/orderdesk/orderdesk/internal/config"
	"github.com/orderdesk/orderdesk/internal/event"
	"github.com/orderdesk/orderdesk/internal/service"
	"github.com/orderdesk/orderdesk/internal/support/logging"
	"github.com/orderdesk/orderdesk/internal/support/retry"
)

// app holds everything a command needs once config and database are open.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       *bootstrap.Database
	infra    *bootstrap.Infrastructure
	registry *prometheus.Registry

	analytics service.AnalyticsService
	orders    service.OrderQueryService
	tracker   service.OrderTrackerService
	admins    service.AdminService
	auth      service.AuthService
	system    service.SystemService

	hub    *event.Hub
	rabbit *event.RabbitPublisher
}

type appOptions struct {
	// events connects the websocket hub and RabbitMQ; CLI one-shots skip them.
	events    bool
	startedAt time.Time
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFile(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	logger := logging.New(logging.Options{
		Level:     cfg.Log.SlogLevel(),
		Format:    cfg.Log.Format,
		AddSource: cfg.Log.AddSource,
	})
	slog.SetDefault(logger)
	return logger
}

func openApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg)

	db, err := bootstrap.OpenDatabase(ctx, cfg.DB, logger)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger, db: db}
	if err := a.build(ctx, opts); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) build(ctx context.Context, opts appOptions) error {
	cfg, logger := a.cfg, a.logger
	if err := a.db.Migrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	signingKey, source, err := bootstrap.ResolveJWTSigningKey(ctx, a.db.Store.Settings(), cfg.Auth.SigningKey, time.Now)
	if err != nil {
		return err
	}
	logger.Debug("jwt signing key loaded", "source", string(source))

	infra, err := bootstrap.BuildInfrastructure(cfg, signingKey, logger)
	if err != nil {
		return err
	}
	a.infra = infra

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	var metrics *service.Metrics
	if cfg.Metrics.Enabled {
		metrics = service.NewMetrics(a.registry, cfg.Metrics.Namespace)
	}

	groupBy, err := analytics.ParseGroupBy(cfg.Analytics.GroupBy)
	if err != nil {
		return err
	}
	a.analytics, err = service.NewAnalyticsService(service.AnalyticsOptions{
		Store:    a.db.Store,
		Cache:    infra.Cache,
		CacheTTL: cfg.Analytics.CacheTTL,
		GroupBy:  groupBy,
		Metrics:  metrics,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	publishers := event.Multi{event.LogPublisher{Logger: logging.Component(logger, "events")}}
	if opts.events {
		if cfg.Events.WebSocket {
			a.hub = event.NewHub(logger, event.HubOptions{AllowedOrigins: cfg.HTTP.AllowedOrigins})
			publishers = append(publishers, a.hub)
		}
		if cfg.Events.RabbitMQ.Enabled {
			a.rabbit, err = event.DialRabbit(ctx, event.RabbitOptions{
				URL:      cfg.Events.RabbitMQ.URL,
				Exchange: cfg.Events.RabbitMQ.Exchange,
				Retry:    retry.DefaultConfig(),
			}, logger)
			if err != nil {
				return fmt.Errorf("connect rabbitmq: %w", err)
			}
			publishers = append(publishers, a.rabbit)
		}
	}

	a.tracker, err = service.NewOrderTrackerService(service.OrderTrackerOptions{
		Store:       a.db.Store,
		Publisher:   publishers,
		Invalidator: a.analytics,
		Audit:       infra.Audit,
		Metrics:     metrics,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	a.orders = service.NewOrderQueryService(a.db.Store)
	a.admins = service.NewAdminService(a.db.Store, infra.Hasher, nil)
	a.auth, err = service.NewAuthService(service.AuthOptions{
		Admins:      a.db.Store.Admins(),
		Hasher:      infra.Hasher,
		Tokens:      infra.Token,
		Rate:        infra.RateLimiter,
		Audit:       infra.Audit,
		LoginLimit:  cfg.Auth.LoginLimit,
		LoginWindow: cfg.Auth.LoginWindow,
	})
	if err != nil {
		return err
	}
	a.system = service.NewSystemService(service.SystemOptions{
		Version:   Version,
		StartedAt: opts.startedAt,
		Store:     a.db.Store,
		Driver:    string(a.db.Dialect),
	})
	return nil
}

// ready pings the database for the readiness probe.
func (a *app) ready(ctx context.Context) error {
	if a.db.Pool != nil {
		return a.db.Pool.Ping(ctx)
	}
	return a.db.SQL.PingContext(ctx)
}

// Close releases connections in reverse order of creation.
func (a *app) Close() {
	if a.hub != nil {
		a.hub.Close()
	}
	if a.rabbit != nil {
		if err := a.rabbit.Close(); err != nil {
			a.logger.Warn("close rabbitmq", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			a.logger.Warn("close database", "error", err)
		}
	}
}

// scopeFor builds the CLI scope for a restaurant; the actor shows up in history.
func scopeFor(restaurantID int64) (service.Scope, error) {
	scope := service.Scope{RestaurantID: restaurantID, Email: "cli@" + hostname()}
	if !scope.Valid() {
		return scope, fmt.Errorf("--restaurant is required / 需要指定餐厅 ID")
	}
	return scope, nil
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return "localhost"
	}
	return h
}
