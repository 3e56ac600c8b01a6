// 文件路径: internal/service/analytics.go
// 模块说明: 仪表盘排行（最多下单 / 最多浏览），结果按餐厅缓存，订单状态变化时失效。
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/orderdesk/orderdesk/internal/analytics"
	"github.com/orderdesk/orderdesk/internal/cache"
	"github.com/orderdesk/orderdesk/internal/chart"
	"github.com/orderdesk/orderdesk/internal/repository"
)

// AnalyticsService computes the dashboard rankings for one restaurant.
type AnalyticsService interface {
	TopOrdered(ctx context.Context, scope Scope) ([]analytics.Ranked, error)
	TopViewed(ctx context.Context, scope Scope) ([]analytics.Ranked, error)
	Comparison(ctx context.Context, scope Scope) (chart.Comparison, error)
	// Warm recomputes and caches both rankings.
	Warm(ctx context.Context, restaurantID int64) error
	Invalidate(ctx context.Context, restaurantID int64)
}

// AnalyticsOptions 注入依赖。
type AnalyticsOptions struct {
	Store    repository.Store
	Cache    cache.Store
	CacheTTL time.Duration
	GroupBy  analytics.GroupBy
	Metrics  *Metrics
	Logger   *slog.Logger
}

const (
	rankingOrdered = "ordered"
	rankingViewed  = "viewed"
)

type analyticsService struct {
	store   repository.Store
	cache   cache.Store
	ttl     time.Duration
	groupBy analytics.GroupBy
	metrics *Metrics
	logger  *slog.Logger
	flight  singleflight.Group
}

// NewAnalyticsService 创建排行服务；Cache 为空时每次都直接查询。
func NewAnalyticsService(opts AnalyticsOptions) (AnalyticsService, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("analytics requires a store / 排行服务需要存储")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	groupBy := opts.GroupBy
	if groupBy == "" {
		groupBy = analytics.GroupByName
	}
	svc := &analyticsService{
		store:   opts.Store,
		ttl:     opts.CacheTTL,
		groupBy: groupBy,
		metrics: opts.Metrics,
		logger:  logger.With("component", "analytics"),
	}
	if opts.Cache != nil && opts.CacheTTL > 0 {
		svc.cache = opts.Cache.Namespace("analytics")
	}
	return svc, nil
}

func (s *analyticsService) TopOrdered(ctx context.Context, scope Scope) ([]analytics.Ranked, error) {
	if !scope.Valid() {
		return nil, ErrUnauthorized
	}
	return s.cached(ctx, scope.RestaurantID, rankingOrdered, s.computeOrdered)
}

func (s *analyticsService) TopViewed(ctx context.Context, scope Scope) ([]analytics.Ranked, error) {
	if !scope.Valid() {
		return nil, ErrUnauthorized
	}
	return s.cached(ctx, scope.RestaurantID, rankingViewed, s.computeViewed)
}

func (s *analyticsService) Comparison(ctx context.Context, scope Scope) (chart.Comparison, error) {
	ordered, err := s.TopOrdered(ctx, scope)
	if err != nil {
		return chart.Comparison{}, err
	}
	viewed, err := s.TopViewed(ctx, scope)
	if err != nil {
		return chart.Comparison{}, err
	}
	return chart.Compare(ordered, viewed), nil
}

func (s *analyticsService) Warm(ctx context.Context, restaurantID int64) error {
	s.Invalidate(ctx, restaurantID)
	if _, err := s.cached(ctx, restaurantID, rankingOrdered, s.computeOrdered); err != nil {
		return err
	}
	_, err := s.cached(ctx, restaurantID, rankingViewed, s.computeViewed)
	return err
}

func (s *analyticsService) Invalidate(ctx context.Context, restaurantID int64) {
	if s.cache == nil {
		return
	}
	s.cache.DeletePrefix(ctx, restaurantPrefix(restaurantID))
}

func (s *analyticsService) cached(ctx context.Context, restaurantID int64, ranking string, compute func(context.Context, int64) ([]analytics.Ranked, error)) ([]analytics.Ranked, error) {
	key := restaurantPrefix(restaurantID) + ranking
	if s.cache != nil {
		var hit []analytics.Ranked
		ok, err := s.cache.GetJSON(ctx, key, &hit)
		if err != nil {
			s.logger.Warn("analytics cache decode failed", "key", key, "error", err)
		}
		s.metrics.cache(ranking, ok && err == nil)
		if ok && err == nil {
			return hit, nil
		}
	}

	v, err, _ := s.flight.Do(key, func() (any, error) {
		ranked, err := compute(ctx, restaurantID)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.SetJSON(ctx, key, ranked, s.ttl); err != nil {
				s.logger.Warn("analytics cache store failed", "key", key, "error", err)
			}
		}
		return ranked, nil
	})
	if err != nil {
		s.logger.Error("analytics fetch failed", "restaurant_id", restaurantID, "ranking", ranking, "error", err)
		return nil, err
	}
	src := v.([]analytics.Ranked)
	out := make([]analytics.Ranked, len(src))
	copy(out, src)
	return out, nil
}

func (s *analyticsService) computeOrdered(ctx context.Context, restaurantID int64) ([]analytics.Ranked, error) {
	lines, err := s.store.Orders().ListLines(ctx, repository.OrderLineFilter{
		RestaurantID: restaurantID,
		Statuses:     analytics.ActiveStatuses,
	})
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	return analytics.RankByQuantity(lines, analytics.Options{GroupBy: s.groupBy}), nil
}

func (s *analyticsService) computeViewed(ctx context.Context, restaurantID int64) ([]analytics.Ranked, error) {
	products, err := s.store.Products().List(ctx, repository.ProductFilter{
		RestaurantID: restaurantID,
		Limit:        analytics.TopN,
		OrderByViews: true,
	})
	if err != nil {
		return nil, fmt.Errorf("list products by views: %w", err)
	}
	return analytics.RankByViews(products), nil
}

func restaurantPrefix(restaurantID int64) string {
	return fmt.Sprintf("r:%d:", restaurantID)
}
