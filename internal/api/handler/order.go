// 文件路径: internal/api/handler/order.go
// 模块说明: 订单列表、详情、阶段流转与实时事件推送。
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/orderdesk/orderdesk/internal/api/requestctx"
	"github.com/orderdesk/orderdesk/internal/event"
	"github.com/orderdesk/orderdesk/internal/order"
	"github.com/orderdesk/orderdesk/internal/service"
	"github.com/orderdesk/orderdesk/internal/support/i18n"
)

// OrderHandler serves /admin/orders.
type OrderHandler struct {
	tracker service.OrderTrackerService
	orders  service.OrderQueryService
	hub     *event.Hub
	i18n    *i18n.Manager
	logger  *slog.Logger
}

// NewOrderHandler wires order services. hub may be nil when websockets are disabled.
func NewOrderHandler(tracker service.OrderTrackerService, orders service.OrderQueryService, hub *event.Hub, i18nMgr *i18n.Manager, logger *slog.Logger) *OrderHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderHandler{tracker: tracker, orders: orders, hub: hub, i18n: i18nMgr, logger: logger}
}

// List handles GET /orders?status=&limit=&offset=.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	const action = "order.list"
	scope, ok := h.scope(w, r, action)
	if !ok {
		return
	}
	q := r.URL.Query()
	items, err := h.orders.List(r.Context(), scope, service.OrderListInput{
		Status: q.Get("status"),
		Limit:  queryInt(q.Get("limit"), 0),
		Offset: queryInt(q.Get("offset"), 0),
	})
	if err != nil {
		respondServiceError(r.Context(), w, h.logger, action, err, h.i18n)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"data":  items,
		"count": len(items),
	})
}

// Detail handles GET /orders/{id}.
func (h *OrderHandler) Detail(w http.ResponseWriter, r *http.Request) {
	const action = "order.detail"
	scope, ok := h.scope(w, r, action)
	if !ok {
		return
	}
	id, ok := orderIDParam(r)
	if !ok {
		RespondErrorI18nAction(r.Context(), w, http.StatusNotFound, action, "error.order_not_found", h.i18n)
		return
	}
	detail, err := h.orders.Detail(r.Context(), scope, id)
	if err != nil {
		respondServiceError(r.Context(), w, h.logger, action, err, h.i18n)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": detail})
}

// History handles GET /orders/{id}/history.
func (h *OrderHandler) History(w http.ResponseWriter, r *http.Request) {
	const action = "order.history"
	scope, ok := h.scope(w, r, action)
	if !ok {
		return
	}
	id, ok := orderIDParam(r)
	if !ok {
		RespondErrorI18nAction(r.Context(), w, http.StatusNotFound, action, "error.order_not_found", h.i18n)
		return
	}
	entries, err := h.orders.History(r.Context(), scope, id)
	if err != nil {
		respondServiceError(r.Context(), w, h.logger, action, err, h.i18n)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"data":  entries,
		"count": len(entries),
	})
}

// Transition handles POST /orders/{id}/{action} for advance, retreat and reject.
// A no-op at either end of the sequence still answers 200 with changed=false.
func (h *OrderHandler) Transition(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "action")
	actionName := "order." + raw
	scope, ok := h.scope(w, r, actionName)
	if !ok {
		return
	}
	act, err := order.ParseAction(raw)
	if err != nil {
		RespondErrorI18nAction(r.Context(), w, http.StatusBadRequest, actionName, "error.invalid_action", h.i18n, raw)
		return
	}
	id, ok := orderIDParam(r)
	if !ok {
		RespondErrorI18nAction(r.Context(), w, http.StatusNotFound, actionName, "error.order_not_found", h.i18n)
		return
	}
	result, err := h.tracker.Apply(r.Context(), scope, id, act)
	if err != nil {
		respondServiceError(r.Context(), w, h.logger, actionName, err, h.i18n)
		return
	}
	key := "order.transition_applied"
	if !result.Changed {
		key = "order.transition_noop"
	}
	RespondSuccessI18n(r.Context(), w, key, h.i18n, result, result.To)
}

// Events upgrades to a websocket that streams StatusChanged frames.
func (h *OrderHandler) Events(w http.ResponseWriter, r *http.Request) {
	const action = "order.events"
	scope, ok := h.scope(w, r, action)
	if !ok {
		return
	}
	if h.hub == nil {
		RespondErrorI18nAction(r.Context(), w, http.StatusServiceUnavailable, action, "error.service_unavailable", h.i18n)
		return
	}
	// Serve 写入升级失败响应后返回错误，这里只记录。
	if err := h.hub.Serve(w, r, scope.RestaurantID); err != nil {
		h.logger.DebugContext(r.Context(), "websocket closed", "restaurant_id", scope.RestaurantID, "error", err)
	}
}

func (h *OrderHandler) scope(w http.ResponseWriter, r *http.Request, action string) (service.Scope, bool) {
	scope, ok := requestctx.ScopeFrom(r.Context())
	if !ok {
		RespondErrorI18nAction(r.Context(), w, http.StatusUnauthorized, action, "error.unauthorized", h.i18n)
		return service.Scope{}, false
	}
	if h.tracker == nil || h.orders == nil {
		RespondErrorI18nAction(r.Context(), w, http.StatusServiceUnavailable, action, "error.service_unavailable", h.i18n)
		return service.Scope{}, false
	}
	return scope, true
}
