package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderdesk/orderdesk/internal/api/requestctx"
	"github.com/orderdesk/orderdesk/internal/cache"
	"github.com/orderdesk/orderdesk/internal/security"
	"github.com/orderdesk/orderdesk/internal/service"
)

type stubAuth struct {
	scope service.Scope
}

func (s stubAuth) Login(context.Context, service.LoginInput) (*service.LoginResult, error) {
	return nil, service.ErrInvalidCredentials
}

func (s stubAuth) Verify(_ context.Context, raw string) (service.Scope, error) {
	if raw != "good" {
		return service.Scope{}, service.ErrUnauthorized
	}
	return s.scope, nil
}

func TestRestaurantGuard(t *testing.T) {
	var seen service.Scope
	h := RestaurantGuard(stubAuth{scope: service.Scope{RestaurantID: 7, AdminID: 1}})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = requestctx.ScopeFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	serve := func(header map[string]string, target string) int {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		for k, v := range header {
			req.Header.Set(k, v)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, serve(nil, "/"))
	assert.Equal(t, http.StatusUnauthorized, serve(map[string]string{"Authorization": "Bearer bad"}, "/"))
	assert.Equal(t, http.StatusForbidden, serve(map[string]string{"Authorization": "Bearer good", RestaurantHeader: "8"}, "/"))
	assert.Equal(t, http.StatusForbidden, serve(map[string]string{"Authorization": "Bearer good", RestaurantHeader: "x"}, "/"))
	assert.Equal(t, http.StatusNoContent, serve(map[string]string{"Authorization": "Bearer good", RestaurantHeader: "7"}, "/"))
	assert.Equal(t, int64(7), seen.RestaurantID)
	assert.Equal(t, http.StatusNoContent, serve(nil, "/?access_token=good"))
}

func TestRateLimit(t *testing.T) {
	limiter, err := security.NewRateLimiter(cache.NewStore(cache.Options{}))
	require.NoError(t, err)
	h := RateLimit(RateLimitConfig{Limiter: limiter, Limit: 2, Window: time.Minute, SkipPaths: []string{"/healthz"}})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests {
			assert.NotEmpty(t, rec.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := CORS(CORSConfig{AllowedOrigins: []string{"https://dash.example"}})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api", nil)
	req.Header.Set("Origin", "https://dash.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://dash.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), RestaurantHeader)

	req = httptest.NewRequest(http.MethodGet, "/api", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestI18nLanguageSources(t *testing.T) {
	var got string
	h := I18n()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = requestctx.GetLanguage(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/?lang=pt-BR", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "pt-BR", got)
	require.Len(t, rec.Result().Cookies(), 1)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "pt-BR,pt;q=0.8")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "pt-BR", got)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-I18N-Lang", "not a tag!")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, requestctx.DefaultLanguage, got)
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(MetricsConfig{Registerer: reg, Namespace: "t"})

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/orders/{id}", func(w http.ResponseWriter, r *http.Request) {})

	for _, id := range []string{"1", "2", "3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders/"+id, nil))
	}
	assert.Equal(t, 3.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/orders/{id}", "200")))
}

func TestMetricsGuard(t *testing.T) {
	h := MetricsGuard("s3cret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func decodeLogLines(t *testing.T, raw string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestStructuredLoggerRecordsOrderTransition(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	r := chi.NewRouter()
	r.Use(StructuredLogger(LoggingConfig{Logger: logger, SkipPaths: []string{"/healthz"}}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Route("/orders", func(orders chi.Router) {
		orders.Use(RestaurantGuard(stubAuth{scope: service.Scope{RestaurantID: 7, AdminID: 1, Email: "chef@example.com"}}))
		orders.Post("/{id:[0-9]+}/{action}", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusConflict)
		})
	})

	req := httptest.NewRequest(http.MethodPost, "/orders/42/advance", nil)
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(httptest.NewRecorder(), req)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	lines := decodeLogLines(t, buf.String())
	require.Len(t, lines, 1)
	entry := lines[0]
	assert.Equal(t, "request error", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "/orders/{id:[0-9]+}/{action}", entry["route"])
	assert.EqualValues(t, 42, entry["order_id"])
	assert.Equal(t, "advance", entry["action"])
	assert.EqualValues(t, 7, entry["restaurant_id"])
	assert.EqualValues(t, 409, entry["status"])
}

func TestStructuredLoggerEventStream(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	h := StructuredLogger(LoggingConfig{Logger: logger, SlowThreshold: time.Nanosecond})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Millisecond)
	}))

	req := httptest.NewRequest(http.MethodGet, "/orders/events?access_token=secret", nil)
	req.Header.Set("Upgrade", "websocket")
	h.ServeHTTP(httptest.NewRecorder(), req)

	lines := decodeLogLines(t, buf.String())
	require.Len(t, lines, 1)
	assert.Equal(t, "event stream closed", lines[0]["msg"])
	assert.Equal(t, "INFO", lines[0]["level"])
	assert.NotContains(t, buf.String(), "secret")
}

func TestStructuredLoggerSlowRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	h := StructuredLogger(LoggingConfig{Logger: logger, SlowThreshold: time.Nanosecond})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders", nil))

	lines := decodeLogLines(t, buf.String())
	require.Len(t, lines, 1)
	assert.Equal(t, "slow request", lines[0]["msg"])
	assert.Contains(t, lines[0], "slow_threshold")
}
