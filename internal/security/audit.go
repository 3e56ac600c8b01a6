// 文件路径: internal/security/audit.go
// 模块说明: 审计事件（登录、订单状态变更失败等）的记录接口。
package security

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// 审计事件类型。
const (
	KindLoginSucceeded   = "auth.login.succeeded"
	KindLoginFailed      = "auth.login.failed"
	KindLoginThrottled   = "auth.login.throttled"
	KindOrderTransition  = "order.transition"
	KindOrderWriteFailed = "order.transition.failed"
)

// Event 表示一次需要留痕的行为。
type Event struct {
	Kind         string
	Actor        string
	RestaurantID int64
	IP           string
	Metadata     map[string]any
	Occurred     time.Time
}

// Recorder 记录安全事件，供后续分析。
type Recorder interface {
	Record(ctx context.Context, event Event)
}

// LoggerRecorder 将审计事件写入 slog.Logger。
type LoggerRecorder struct {
	logger *slog.Logger
}

// NewLoggerRecorder 返回记录器，写入指定 logger（为空时丢弃）。
func NewLoggerRecorder(logger *slog.Logger) *LoggerRecorder {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LoggerRecorder{logger: logger.With("component", "audit")}
}

// Record 实现 Recorder。
func (r *LoggerRecorder) Record(ctx context.Context, event Event) {
	if r == nil || r.logger == nil {
		return
	}
	if event.Occurred.IsZero() {
		event.Occurred = time.Now().UTC()
	}
	level := slog.LevelInfo
	if event.Kind == KindLoginFailed || event.Kind == KindLoginThrottled || event.Kind == KindOrderWriteFailed {
		level = slog.LevelWarn
	}
	r.logger.Log(ctx, level, "audit event",
		"kind", event.Kind,
		"actor", event.Actor,
		"restaurant_id", event.RestaurantID,
		"ip", event.IP,
		"metadata", event.Metadata,
		"occurred", event.Occurred.Format(time.RFC3339Nano),
	)
}
