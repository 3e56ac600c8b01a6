package requestctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/orderdesk/orderdesk/internal/service"
)

func TestScopeRoundTrip(t *testing.T) {
	_, ok := ScopeFrom(context.Background())
	assert.False(t, ok)

	ctx := WithScope(context.Background(), service.Scope{RestaurantID: 3, AdminID: 9})
	scope, ok := ScopeFrom(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(3), scope.RestaurantID)

	_, ok = ScopeFrom(WithScope(context.Background(), service.Scope{}))
	assert.False(t, ok)
}

func TestLanguageDefault(t *testing.T) {
	assert.Equal(t, "en-US", GetLanguage(context.Background()))
	assert.Equal(t, "pt-BR", GetLanguage(WithLanguage(context.Background(), "pt-BR")))
}
