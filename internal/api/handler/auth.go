// 文件路径: internal/api/handler/auth.go
// 模块说明: 后台登录接口。
package handler

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/orderdesk/orderdesk/internal/service"
	"github.com/orderdesk/orderdesk/internal/support/i18n"
)

// AuthHandler exposes POST /auth/login.
type AuthHandler struct {
	auth   service.AuthService
	i18n   *i18n.Manager
	logger *slog.Logger
}

// NewAuthHandler wires the auth service.
func NewAuthHandler(auth service.AuthService, i18nMgr *i18n.Manager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, i18n: i18nMgr, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login 校验邮箱密码并签发令牌。
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	const action = "auth.login"
	if h.auth == nil {
		RespondErrorI18nAction(r.Context(), w, http.StatusServiceUnavailable, action, "error.service_unavailable", h.i18n)
		return
	}
	var payload loginRequest
	if err := decodeJSON(r, &payload); err != nil || strings.TrimSpace(payload.Email) == "" || payload.Password == "" {
		RespondErrorI18nAction(r.Context(), w, http.StatusBadRequest, action, "error.bad_request", h.i18n)
		return
	}
	result, err := h.auth.Login(r.Context(), service.LoginInput{
		Email:    payload.Email,
		Password: payload.Password,
		IP:       remoteIP(r),
	})
	if err != nil {
		respondServiceError(r.Context(), w, h.logger, action, err, h.i18n)
		return
	}
	RespondSuccessI18n(r.Context(), w, "auth.login_success", h.i18n, result)
}

func remoteIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
