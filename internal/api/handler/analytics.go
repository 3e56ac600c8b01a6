// 文件路径: internal/api/handler/analytics.go
// 模块说明: 仪表盘排行与图表数据。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/orderdesk/orderdesk/internal/analytics"
	"github.com/orderdesk/orderdesk/internal/api/requestctx"
	"github.com/orderdesk/orderdesk/internal/chart"
	"github.com/orderdesk/orderdesk/internal/service"
	"github.com/orderdesk/orderdesk/internal/support/i18n"
)

// AnalyticsHandler serves /admin/analytics and /admin/dashboard.
type AnalyticsHandler struct {
	analytics service.AnalyticsService
	orders    service.OrderQueryService
	i18n      *i18n.Manager
	logger    *slog.Logger
}

// NewAnalyticsHandler wires analytics and the insights query.
func NewAnalyticsHandler(svc service.AnalyticsService, orders service.OrderQueryService, i18nMgr *i18n.Manager, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: svc, orders: orders, i18n: i18nMgr, logger: logger}
}

// rankingResponse carries the raw ranking and the ready-to-draw series.
type rankingResponse struct {
	Items []analytics.Ranked `json:"items"`
	Chart chart.Series       `json:"chart"`
}

// TopOrdered handles GET /analytics/top-ordered.
func (h *AnalyticsHandler) TopOrdered(w http.ResponseWriter, r *http.Request) {
	h.ranking(w, r, "analytics.top_ordered", h.analytics.TopOrdered, chart.OrderedStyle)
}

// TopViewed handles GET /analytics/top-viewed.
func (h *AnalyticsHandler) TopViewed(w http.ResponseWriter, r *http.Request) {
	h.ranking(w, r, "analytics.top_viewed", h.analytics.TopViewed, chart.ViewsStyle)
}

func (h *AnalyticsHandler) ranking(w http.ResponseWriter, r *http.Request, action string, fetch func(context.Context, service.Scope) ([]analytics.Ranked, error), style chart.Style) {
	scope, ok := h.scope(w, r, action)
	if !ok {
		return
	}
	items, err := fetch(r.Context(), scope)
	if err != nil {
		respondServiceError(r.Context(), w, h.logger, action, err, h.i18n)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"data": rankingResponse{Items: items, Chart: chart.Bar(items, style)},
	})
}

// Comparison handles GET /analytics/comparison. ready=false tells the
// dashboard to skip drawing.
func (h *AnalyticsHandler) Comparison(w http.ResponseWriter, r *http.Request) {
	const action = "analytics.comparison"
	scope, ok := h.scope(w, r, action)
	if !ok {
		return
	}
	cmp, err := h.analytics.Comparison(r.Context(), scope)
	if err != nil {
		respondServiceError(r.Context(), w, h.logger, action, err, h.i18n)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": cmp})
}

// Insights handles GET /dashboard/insights.
func (h *AnalyticsHandler) Insights(w http.ResponseWriter, r *http.Request) {
	const action = "dashboard.insights"
	scope, ok := h.scope(w, r, action)
	if !ok {
		return
	}
	if h.orders == nil {
		RespondErrorI18nAction(r.Context(), w, http.StatusServiceUnavailable, action, "error.service_unavailable", h.i18n)
		return
	}
	insights, err := h.orders.Insights(r.Context(), scope)
	if err != nil {
		respondServiceError(r.Context(), w, h.logger, action, err, h.i18n)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": insights})
}

func (h *AnalyticsHandler) scope(w http.ResponseWriter, r *http.Request, action string) (service.Scope, bool) {
	scope, ok := requestctx.ScopeFrom(r.Context())
	if !ok {
		RespondErrorI18nAction(r.Context(), w, http.StatusUnauthorized, action, "error.unauthorized", h.i18n)
		return service.Scope{}, false
	}
	if h.analytics == nil {
		RespondErrorI18nAction(r.Context(), w, http.StatusServiceUnavailable, action, "error.service_unavailable", h.i18n)
		return service.Scope{}, false
	}
	return scope, true
}
