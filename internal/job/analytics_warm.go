package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/orderdesk/orderdesk/internal/repository"
	"github.com/orderdesk/orderdesk/internal/service"
)

// AnalyticsWarmJob recomputes the cached rankings of every restaurant so the
// first dashboard load after a quiet period is served from cache.
type AnalyticsWarmJob struct {
	Restaurants repository.RestaurantRepository
	Analytics   service.AnalyticsService
	Logger      *slog.Logger
}

// NewAnalyticsWarmJob creates a new AnalyticsWarmJob.
func NewAnalyticsWarmJob(restaurants repository.RestaurantRepository, analytics service.AnalyticsService, logger *slog.Logger) *AnalyticsWarmJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsWarmJob{Restaurants: restaurants, Analytics: analytics, Logger: logger}
}

// Name implements Runnable interface.
func (j *AnalyticsWarmJob) Name() string {
	return "analytics-warm"
}

// Run implements Runnable interface. One failing restaurant does not stop the others.
func (j *AnalyticsWarmJob) Run(ctx context.Context) error {
	if j == nil || j.Restaurants == nil || j.Analytics == nil {
		return fmt.Errorf("analytics warm job dependencies not configured / 排行预热任务依赖未配置")
	}
	restaurants, err := j.Restaurants.List(ctx)
	if err != nil {
		return fmt.Errorf("list restaurants: %w", err)
	}
	var errs []error
	for _, r := range restaurants {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := j.Analytics.Warm(ctx, r.ID); err != nil {
			errs = append(errs, fmt.Errorf("restaurant %d: %w", r.ID, err))
		}
	}
	j.Logger.Debug("analytics cache warmed", "restaurants", len(restaurants), "failed", len(errs))
	return errors.Join(errs...)
}
