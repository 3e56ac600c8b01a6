package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderdesk/orderdesk/internal/analytics"
	"github.com/orderdesk/orderdesk/internal/cache"
	"github.com/orderdesk/orderdesk/internal/support/logging"
)

// newAnalytics returns the service, the seeded scope and a setter for the
// status of the pending Soda order.
func newAnalytics(t *testing.T, withCache bool) (AnalyticsService, Scope, func(status string)) {
	t.Helper()
	store, fx := seeded(t)
	opts := AnalyticsOptions{Store: store, Logger: logging.Discard(), Metrics: NewMetrics(nil, "test")}
	if withCache {
		opts.Cache = cache.NewStore(cache.Options{Prefix: "t"})
		opts.CacheTTL = time.Minute
	}
	svc, err := NewAnalyticsService(opts)
	require.NoError(t, err)
	setSoda := func(status string) {
		require.NoError(t, store.Orders().UpdateStatus(context.Background(), fx.OrderIDs[2], status, 1))
	}
	return svc, Scope{RestaurantID: fx.RestaurantID}, setSoda
}

func TestTopOrderedExcludesPendingAndRejected(t *testing.T) {
	svc, scope, _ := newAnalytics(t, false)
	got, err := svc.TopOrdered(context.Background(), scope)
	require.NoError(t, err)
	assert.Equal(t, []analytics.Ranked{{Label: "Pizza", Metric: 5}}, got)
}

func TestTopViewedIsScopedAndSorted(t *testing.T) {
	svc, scope, _ := newAnalytics(t, false)
	got, err := svc.TopViewed(context.Background(), scope)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Soda", got[0].Label)
	assert.Equal(t, int64(90), got[0].Metric)
	assert.Equal(t, "Pizza", got[2].Label)
	assert.Equal(t, int64(30), got[2].Metric, "the other restaurant's Pizza must not leak in")
}

func TestComparisonReady(t *testing.T) {
	svc, scope, _ := newAnalytics(t, false)
	c, err := svc.Comparison(context.Background(), scope)
	require.NoError(t, err)
	assert.True(t, c.Ready)
	assert.Equal(t, []string{"Pizza"}, c.Labels)
	require.Len(t, c.Datasets, 2)
	assert.Equal(t, []int64{90, 60, 30}, c.Datasets[1].Data)
}

func TestCacheServesUntilInvalidated(t *testing.T) {
	svc, scope, confirmSoda := newAnalytics(t, true)
	ctx := context.Background()

	first, err := svc.TopOrdered(ctx, scope)
	require.NoError(t, err)
	require.Len(t, first, 1)

	confirmSoda("Confirmado")
	cached, err := svc.TopOrdered(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	svc.Invalidate(ctx, scope.RestaurantID)
	fresh, err := svc.TopOrdered(ctx, scope)
	require.NoError(t, err)
	assert.Len(t, fresh, 2)
}

func TestWarmRefreshes(t *testing.T) {
	svc, scope, confirmSoda := newAnalytics(t, true)
	ctx := context.Background()
	_, err := svc.TopOrdered(ctx, scope)
	require.NoError(t, err)

	confirmSoda("Entregue")
	require.NoError(t, svc.Warm(ctx, scope.RestaurantID))
	got, err := svc.TopOrdered(ctx, scope)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestAnalyticsRequiresScope(t *testing.T) {
	svc, _, _ := newAnalytics(t, false)
	_, err := svc.TopOrdered(context.Background(), Scope{})
	assert.ErrorIs(t, err, ErrUnauthorized)
}
