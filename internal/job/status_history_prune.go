package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/orderdesk/orderdesk/internal/repository"
)

// StatusHistoryPruneJob deletes status events older than Retention.
type StatusHistoryPruneJob struct {
	Events    repository.StatusEventRepository
	Retention time.Duration
	Logger    *slog.Logger
	Now       func() time.Time
}

// NewStatusHistoryPruneJob creates a new StatusHistoryPruneJob.
func NewStatusHistoryPruneJob(events repository.StatusEventRepository, retention time.Duration, logger *slog.Logger) *StatusHistoryPruneJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatusHistoryPruneJob{Events: events, Retention: retention, Logger: logger, Now: time.Now}
}

// Name implements Runnable interface.
func (j *StatusHistoryPruneJob) Name() string {
	return "status-history-prune"
}

// Run implements Runnable interface. A non-positive retention keeps everything.
func (j *StatusHistoryPruneJob) Run(ctx context.Context) error {
	if j == nil || j.Events == nil {
		return fmt.Errorf("status history prune job dependencies not configured / 历史清理任务依赖未配置")
	}
	if j.Retention <= 0 {
		return nil
	}
	now := time.Now
	if j.Now != nil {
		now = j.Now
	}
	cutoff := now().Add(-j.Retention).Unix()
	deleted, err := j.Events.DeleteBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("status history prune: %w", err)
	}
	if deleted > 0 {
		j.Logger.Info("pruned order status history", "deleted_rows", deleted, "cutoff", cutoff)
	}
	return nil
}
