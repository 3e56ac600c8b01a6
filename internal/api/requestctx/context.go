// 文件路径: internal/api/requestctx/context.go
// 模块说明: 请求上下文中的餐厅身份与语言标识。
package requestctx

import (
	"context"

	"github.com/orderdesk/orderdesk/internal/service"
)

type contextKey string

const scopeContextKey contextKey = "orderdesk-scope"

// I18nKey 用于在 context 中存储语言标识的 key 类型。
type I18nKey struct{}

// DefaultLanguage is used when the request carries no language preference.
const DefaultLanguage = "en-US"

// WithLanguage 将语言标识附加到 context 中供下游使用。
func WithLanguage(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, I18nKey{}, lang)
}

// GetLanguage 从 context 中获取语言标识，若未设置则返回默认值。
func GetLanguage(ctx context.Context) string {
	if ctx == nil {
		return DefaultLanguage
	}
	if lang, ok := ctx.Value(I18nKey{}).(string); ok && lang != "" {
		return lang
	}
	return DefaultLanguage
}

// WithScope attaches the authenticated restaurant scope.
func WithScope(ctx context.Context, scope service.Scope) context.Context {
	return context.WithValue(ctx, scopeContextKey, scope)
}

// ScopeFrom returns the scope set by the guard; ok is false on public routes.
func ScopeFrom(ctx context.Context) (service.Scope, bool) {
	if ctx == nil {
		return service.Scope{}, false
	}
	scope, ok := ctx.Value(scopeContextKey).(service.Scope)
	return scope, ok && scope.Valid()
}
