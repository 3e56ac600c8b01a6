package bootstrap

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderdesk/orderdesk/internal/repository/memory"
)

func TestResolveJWTSigningKeyPrefersConfig(t *testing.T) {
	key, src, err := ResolveJWTSigningKey(context.Background(), nil, " secret ", nil)
	require.NoError(t, err)
	assert.Equal(t, "secret", key)
	assert.Equal(t, JWTSigningKeySourceConfig, src)
}

func TestResolveJWTSigningKeyGeneratesOnce(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	now := func() time.Time { return time.Unix(100, 0) }

	key, src, err := resolveJWTSigningKey(ctx, store.Settings(), "change-me", now, bytes.NewReader(bytes.Repeat([]byte{1}, 32)))
	require.NoError(t, err)
	assert.Equal(t, JWTSigningKeySourceGenerated, src)
	assert.Len(t, key, 64)

	again, src, err := ResolveJWTSigningKey(ctx, store.Settings(), "", now)
	require.NoError(t, err)
	assert.Equal(t, JWTSigningKeySourceSettings, src)
	assert.Equal(t, key, again)
}

func TestResolveJWTSigningKeyNeedsStore(t *testing.T) {
	_, _, err := ResolveJWTSigningKey(context.Background(), nil, "change-me", nil)
	assert.Error(t, err)
}
