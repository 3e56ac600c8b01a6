// 文件路径: internal/api/router.go
// 模块说明: 组装 chi 路由：公共探针、登录、以及受餐厅守卫保护的后台接口。
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/orderdesk/orderdesk/internal/api/handler"
	"github.com/orderdesk/orderdesk/internal/api/middleware"
	"github.com/orderdesk/orderdesk/internal/config"
	"github.com/orderdesk/orderdesk/internal/event"
	"github.com/orderdesk/orderdesk/internal/security"
	"github.com/orderdesk/orderdesk/internal/service"
	"github.com/orderdesk/orderdesk/internal/support/i18n"
)

// Services 路由需要的全部业务依赖。
type Services struct {
	Auth      service.AuthService
	Tracker   service.OrderTrackerService
	Orders    service.OrderQueryService
	Analytics service.AnalyticsService
	System    service.SystemService
	Hub       *event.Hub // nil 表示关闭 WebSocket
	I18n      *i18n.Manager
	// RateLimiter backs the global per-IP limit; nil disables it.
	RateLimiter *security.RateLimiter
	// Ready reports whether dependencies (the database) are reachable.
	Ready func(ctx context.Context) error
}

// Options 路由的 HTTP 与指标配置。
type Options struct {
	HTTP     config.HTTPConfig
	Metrics  config.MetricsConfig
	Registry *prometheus.Registry // nil 时使用全局默认注册表
}

// NewRouter wires middleware and every endpoint of the dashboard backend.
func NewRouter(logger *slog.Logger, services Services, opts Options) http.Handler {
	if services.Auth == nil {
		panic("router requires AuthService")
	}
	if services.Tracker == nil {
		panic("router requires OrderTrackerService")
	}
	if services.Orders == nil {
		panic("router requires OrderQueryService")
	}
	if services.Analytics == nil {
		panic("router requires AnalyticsService")
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(
		chiMiddleware.RequestID,
		chiMiddleware.RealIP,
	)

	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if opts.Registry != nil {
		registerer, gatherer = opts.Registry, opts.Registry
	}

	if opts.Metrics.Enabled {
		mCfg := middleware.DefaultMetricsConfig()
		mCfg.Registerer = registerer
		if opts.Metrics.Namespace != "" {
			mCfg.Namespace = opts.Metrics.Namespace
		}
		if opts.Metrics.Subsystem != "" {
			mCfg.Subsystem = opts.Metrics.Subsystem
		}
		if len(opts.Metrics.Buckets) > 0 {
			mCfg.Buckets = opts.Metrics.Buckets
		}
		r.Use(middleware.NewMetrics(mCfg).Middleware)
	}

	cors := middleware.DefaultCORSConfig()
	if len(opts.HTTP.AllowedOrigins) > 0 {
		cors.AllowedOrigins = opts.HTTP.AllowedOrigins
	}
	slow := opts.HTTP.SlowThreshold
	if slow <= 0 {
		slow = 500 * time.Millisecond
	}

	r.Use(
		middleware.CORS(cors),
		middleware.BodyLimit(opts.HTTP.BodyLimit),
		middleware.RateLimit(middleware.RateLimitConfig{
			Limiter:   services.RateLimiter,
			Limit:     opts.HTTP.RateLimit,
			Window:    opts.HTTP.RateWindow,
			SkipPaths: []string{"/healthz", "/_internal/ready", "/metrics"},
			Logger:    logger,
		}),
		middleware.StructuredLogger(middleware.LoggingConfig{
			Logger:        logger,
			SlowThreshold: slow,
			SkipPaths:     []string{"/healthz", "/_internal/ready", "/metrics"},
		}),
		chiMiddleware.Recoverer,
		middleware.I18n(),
	)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"ts":     time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	r.Get("/_internal/ready", func(w http.ResponseWriter, req *http.Request) {
		if services.Ready != nil {
			if err := services.Ready(req.Context()); err != nil {
				logger.Warn("readiness check failed", "error", err)
				respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	if opts.Metrics.Enabled {
		r.With(middleware.MetricsGuard(opts.Metrics.Token)).
			Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	registerAPIRoutes(r, logger, services)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		logger.Warn("unmapped route hit", "method", req.Method, "path", req.URL.Path)
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})

	return r
}

func registerAPIRoutes(root chi.Router, logger *slog.Logger, services Services) {
	authHandler := handler.NewAuthHandler(services.Auth, services.I18n, logger)
	orderHandler := handler.NewOrderHandler(services.Tracker, services.Orders, services.Hub, services.I18n, logger)
	analyticsHandler := handler.NewAnalyticsHandler(services.Analytics, services.Orders, services.I18n, logger)
	systemHandler := handler.NewSystemHandler(services.System, services.I18n, logger)

	root.Route("/api/v1", func(v1 chi.Router) {
		v1.Post("/auth/login", authHandler.Login)

		v1.Route("/admin", func(admin chi.Router) {
			admin.Use(middleware.RestaurantGuard(services.Auth))

			admin.Route("/orders", func(orders chi.Router) {
				orders.Get("/", orderHandler.List)
				// 必须在 {id} 之前注册。
				orders.Get("/events", orderHandler.Events)
				orders.Get("/{id:[0-9]+}", orderHandler.Detail)
				orders.Get("/{id:[0-9]+}/history", orderHandler.History)
				orders.Post("/{id:[0-9]+}/{action}", orderHandler.Transition)
			})

			admin.Route("/analytics", func(a chi.Router) {
				a.Get("/top-ordered", analyticsHandler.TopOrdered)
				a.Get("/top-viewed", analyticsHandler.TopViewed)
				a.Get("/comparison", analyticsHandler.Comparison)
			})

			admin.Get("/dashboard/insights", analyticsHandler.Insights)
			admin.Get("/system/status", systemHandler.Status)
		})
	})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
