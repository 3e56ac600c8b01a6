package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/orderdesk/orderdesk/internal/api/requestctx"
	"github.com/orderdesk/orderdesk/internal/service"
	"github.com/orderdesk/orderdesk/internal/support/i18n"
)

// Helper to respond with JSON
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("failed to encode response JSON", "error", err)
	}
}

// RespondErrorI18nAction writes {"error": <translated key>, "action": action}.
func RespondErrorI18nAction(ctx context.Context, w http.ResponseWriter, status int, action string, key string, i18nMgr *i18n.Manager, args ...any) {
	if key == "" {
		key = action
	}
	lang := requestctx.GetLanguage(ctx)
	var msg string
	if i18nMgr != nil {
		msg = i18nMgr.Translate(lang, key, args...)
	} else {
		msg = key
	}
	resp := map[string]any{
		"error": msg,
	}
	if action != "" {
		resp["action"] = action
	}
	respondJSON(w, status, resp)
}

// RespondSuccessI18n wraps data with a translated message.
func RespondSuccessI18n(ctx context.Context, w http.ResponseWriter, key string, i18nMgr *i18n.Manager, data any, args ...any) {
	lang := requestctx.GetLanguage(ctx)
	var msg string
	if i18nMgr != nil {
		msg = i18nMgr.Translate(lang, key, args...)
	} else {
		msg = key // Fallback
	}

	resp := map[string]any{
		"message": msg,
	}
	if data != nil {
		resp["data"] = data
	}

	respondJSON(w, http.StatusOK, resp)
}

// statusFor maps a service error onto an HTTP status and translation key.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "error.order_not_found"
	case errors.Is(err, service.ErrRejected):
		return http.StatusConflict, "error.order_rejected"
	case errors.Is(err, service.ErrStoreUpdate):
		return http.StatusBadGateway, "error.store_update_failed"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "error.invalid_credentials"
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, "error.unauthorized"
	case errors.Is(err, service.ErrRateLimited):
		return http.StatusTooManyRequests, "error.too_many_requests"
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, "error.bad_request"
	default:
		return http.StatusInternalServerError, "error.internal_server_error"
	}
}

// respondServiceError logs unexpected errors and writes the mapped response.
func respondServiceError(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, action string, err error, i18nMgr *i18n.Manager) {
	status, key := statusFor(err)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.ErrorContext(ctx, "request failed", "action", action, "error", err)
	}
	RespondErrorI18nAction(ctx, w, status, action, key, i18nMgr)
}
