// 文件路径: internal/api/middleware/auth.go
// 模块说明: 后台接口的守卫。Bearer 令牌解析为餐厅 Scope 并写入请求上下文。
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/orderdesk/orderdesk/internal/api/requestctx"
	"github.com/orderdesk/orderdesk/internal/service"
)

// RestaurantHeader lets a dashboard pin the restaurant it expects to act on.
const RestaurantHeader = "X-Restaurant-ID"

// RestaurantGuard ensures requests carry a valid admin token. When the
// RestaurantHeader is present it must match the token's restaurant.
func RestaurantGuard(auth service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth == nil {
				writeUnauthorized(w, "auth service unavailable")
				return
			}
			token := extractBearer(r.Header.Get("Authorization"))
			if token == "" {
				// 浏览器 WebSocket 无法设置请求头，允许通过查询参数携带令牌。
				token = strings.TrimSpace(r.URL.Query().Get("access_token"))
			}
			if token == "" {
				writeUnauthorized(w, "missing authorization header")
				return
			}
			scope, err := auth.Verify(r.Context(), token)
			if err != nil {
				writeUnauthorized(w, "invalid or expired token")
				return
			}
			if raw := strings.TrimSpace(r.Header.Get(RestaurantHeader)); raw != "" {
				want, err := strconv.ParseInt(raw, 10, 64)
				if err != nil || want != scope.RestaurantID {
					writeForbidden(w, "restaurant mismatch")
					return
				}
			}
			if rec, ok := r.Context().Value(scopeRecorderKey{}).(*scopeRecorder); ok {
				rec.scope = scope
			}
			next.ServeHTTP(w, r.WithContext(requestctx.WithScope(r.Context(), scope)))
		})
	}
}

type scopeRecorderKey struct{}

// scopeRecorder carries the verified scope back out to StructuredLogger.
type scopeRecorder struct {
	scope service.Scope
}

func withScopeRecorder(ctx context.Context, rec *scopeRecorder) context.Context {
	return context.WithValue(ctx, scopeRecorderKey{}, rec)
}

func extractBearer(header string) string {
	trimmed := strings.TrimSpace(header)
	if trimmed == "" {
		return ""
	}
	parts := strings.SplitN(trimmed, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return trimmed
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, message)
}

func writeForbidden(w http.ResponseWriter, message string) {
	writeError(w, http.StatusForbidden, message)
}
