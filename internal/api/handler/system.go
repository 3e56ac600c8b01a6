package handler

import (
	"log/slog"
	"net/http"

	"github.com/orderdesk/orderdesk/internal/api/requestctx"
	"github.com/orderdesk/orderdesk/internal/service"
	"github.com/orderdesk/orderdesk/internal/support/i18n"
)

// SystemHandler exposes GET /system/status.
type SystemHandler struct {
	system service.SystemService
	i18n   *i18n.Manager
	logger *slog.Logger
}

// NewSystemHandler wires the system status service.
func NewSystemHandler(system service.SystemService, i18nMgr *i18n.Manager, logger *slog.Logger) *SystemHandler {
	return &SystemHandler{system: system, i18n: i18nMgr, logger: logger}
}

// Status 返回进程与主机信息以及当前餐厅的订单数量。
func (h *SystemHandler) Status(w http.ResponseWriter, r *http.Request) {
	const action = "system.status"
	if h.system == nil {
		RespondErrorI18nAction(r.Context(), w, http.StatusServiceUnavailable, action, "error.service_unavailable", h.i18n)
		return
	}
	scope, ok := requestctx.ScopeFrom(r.Context())
	if !ok {
		RespondErrorI18nAction(r.Context(), w, http.StatusUnauthorized, action, "error.unauthorized", h.i18n)
		return
	}
	status, err := h.system.Status(r.Context(), scope)
	if err != nil {
		respondServiceError(r.Context(), w, h.logger, action, err, h.i18n)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": status})
}
