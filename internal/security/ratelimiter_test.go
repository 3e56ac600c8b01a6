package security

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderdesk/orderdesk/internal/cache"
)

func TestRateLimiterBlocksAfterLimit(t *testing.T) {
	l, err := NewRateLimiter(cache.NewStore(cache.Options{}))
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := l.Allow(ctx, "login:1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	}
	res, err := l.Allow(ctx, "login:1.2.3.4", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Zero(t, res.Remaining)

	l.Reset(ctx, "login:1.2.3.4")
	res, err = l.Allow(ctx, "login:1.2.3.4", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestRateLimiterRejectsBadLimit(t *testing.T) {
	l, err := NewRateLimiter(cache.NewStore(cache.Options{}))
	require.NoError(t, err)
	_, err = l.Allow(context.Background(), "k", 0, time.Minute)
	assert.Error(t, err)

	_, err = NewRateLimiter(nil)
	assert.Error(t, err)
}
