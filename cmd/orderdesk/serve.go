package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/orderdesk/orderdesk/internal/api"
	"github.com/orderdesk/orderdesk/internal/bootstrap"
	"github.com/orderdesk/orderdesk/internal/job"
	"github.com/orderdesk/orderdesk/internal/support/i18n"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	bootTime := time.Now().UTC()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, appOptions{events: true, startedAt: bootTime})
	if err != nil {
		return err
	}
	defer a.Close()
	cfg, logger := a.cfg, a.logger

	i18nManager, err := i18n.NewManager(i18n.WithLogger(logger))
	if err != nil {
		return err
	}

	scheduler, err := newScheduler(a)
	if err != nil {
		return err
	}
	scheduler.Start()

	router := api.NewRouter(logger, api.Services{
		Auth:        a.auth,
		Tracker:     a.tracker,
		Orders:      a.orders,
		Analytics:   a.analytics,
		System:      a.system,
		Hub:         a.hub,
		I18n:        i18nManager,
		RateLimiter: a.infra.RateLimiter,
		Ready:       a.ready,
	}, api.Options{
		HTTP:     cfg.HTTP,
		Metrics:  cfg.Metrics,
		Registry: a.registry,
	})
	server := bootstrap.NewHTTPServer(cfg.HTTP.Addr, router)

	go func() {
		logger.Info("http server starting", "addr", cfg.HTTP.Addr, "driver", string(a.db.Dialect))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	stopCtx := scheduler.Stop()
	<-stopCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	logger.Info("shutting down http server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	logger.Info("server exited cleanly")
	return nil
}

// newScheduler registers the periodic jobs. An empty spec disables a job.
func newScheduler(a *app) (*job.Scheduler, error) {
	scheduler := job.NewScheduler(a.logger, a.cfg.Jobs.Timeout)
	if spec := a.cfg.Jobs.AnalyticsWarm; spec != "" {
		if _, err := scheduler.Register(spec, job.NewAnalyticsWarmJob(a.db.Store.Restaurants(), a.analytics, a.logger)); err != nil {
			return nil, err
		}
	}
	if spec := a.cfg.Jobs.HistoryPrune; spec != "" {
		if _, err := scheduler.Register(spec, job.NewStatusHistoryPruneJob(a.db.Store.StatusEvents(), a.cfg.Jobs.HistoryRetention, a.logger)); err != nil {
			return nil, err
		}
	}
	return scheduler, nil
}
