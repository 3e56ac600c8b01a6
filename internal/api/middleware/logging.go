// 文件路径: internal/api/middleware/logging.go
// 模块说明: 请求日志。按路由模板记录，带上餐厅、操作人以及订单流转的订单号与动作。
package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// LoggingConfig 日志中间件配置
type LoggingConfig struct {
	Logger *slog.Logger
	// SlowThreshold 之上的普通请求记为 WARN；事件流连接不参与判断。
	SlowThreshold time.Duration
	SkipPaths     []string
}

// StructuredLogger logs one line per request once the handler returns.
func StructuredLogger(config LoggingConfig) func(http.Handler) http.Handler {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.SlowThreshold <= 0 {
		config.SlowThreshold = 500 * time.Millisecond
	}
	skip := make(map[string]struct{}, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := skip[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID == "" {
				requestID = "unknown"
			}
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Header().Set("X-Request-ID", requestID)

			rec := &scopeRecorder{}
			next.ServeHTTP(ww, r.WithContext(withScopeRecorder(r.Context(), rec)))

			entry := requestEntry{
				r:        r,
				rec:      rec,
				id:       requestID,
				status:   ww.Status(),
				bytes:    ww.BytesWritten(),
				duration: time.Since(start),
				stream:   isEventStream(r),
			}
			level, msg := entry.classify(config.SlowThreshold)
			attrs := entry.attrs()
			if msg == "slow request" {
				attrs = append(attrs, slog.Duration("slow_threshold", config.SlowThreshold))
			}
			config.Logger.LogAttrs(r.Context(), level, msg, attrs...)
		})
	}
}

type requestEntry struct {
	r        *http.Request
	rec      *scopeRecorder
	id       string
	status   int
	bytes    int
	duration time.Duration
	stream   bool
}

func (e requestEntry) classify(slow time.Duration) (slog.Level, string) {
	status := e.status
	switch {
	case e.stream && (status == 0 || status == http.StatusSwitchingProtocols):
		return slog.LevelInfo, "event stream closed"
	case status >= 500:
		return slog.LevelError, "request failed"
	case status >= 400:
		return slog.LevelWarn, "request error"
	case e.duration > slow:
		return slog.LevelWarn, "slow request"
	default:
		return slog.LevelInfo, "request completed"
	}
}

func (e requestEntry) attrs() []slog.Attr {
	status := e.status
	if status == 0 {
		status = http.StatusOK
	}
	attrs := []slog.Attr{
		slog.String("request_id", e.id),
		slog.String("method", e.r.Method),
		slog.String("route", routePattern(e.r)),
		slog.Int("status", status),
		slog.Duration("duration", e.duration),
		slog.String("remote_ip", ClientIP(e.r)),
	}
	if e.bytes > 0 {
		attrs = append(attrs, slog.Int("bytes", e.bytes))
	}
	if e.rec.scope.Valid() {
		attrs = append(attrs,
			slog.Int64("restaurant_id", e.rec.scope.RestaurantID),
			slog.String("actor", e.rec.scope.Actor()),
		)
	}
	// 订单路由把订单号与动作放进日志，方便对照状态历史。
	if rctx := chi.RouteContext(e.r.Context()); rctx != nil {
		if id, err := strconv.ParseInt(rctx.URLParam("id"), 10, 64); err == nil {
			attrs = append(attrs, slog.Int64("order_id", id))
		}
		if action := rctx.URLParam("action"); action != "" {
			attrs = append(attrs, slog.String("action", action))
		}
	}
	if e.r.URL.RawQuery != "" {
		attrs = append(attrs, slog.String("query", redactQuery(e.r)))
	}
	return attrs
}

func isEventStream(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

// redactQuery hides the websocket access token.
func redactQuery(r *http.Request) string {
	q := r.URL.Query()
	if q.Has("access_token") {
		q.Set("access_token", "redacted")
	}
	return q.Encode()
}
