// 文件路径: internal/security/ratelimiter.go
// 模块说明: 基于缓存计数的固定窗口限流，用于登录尝试。
package security

import (
	"context"
	"fmt"
	"time"

	"github.com/orderdesk/orderdesk/internal/cache"
)

// RateLimiter 控制重复行为（如登录尝试）。
type RateLimiter struct {
	store cache.Store
	now   func() time.Time
}

// RateResult 描述 Allow 调用的结果。
type RateResult struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// NewRateLimiter 使用缓存存储构建限流器。
func NewRateLimiter(store cache.Store) (*RateLimiter, error) {
	if store == nil {
		return nil, fmt.Errorf("rate limiter requires cache store / 限流器需要缓存存储")
	}
	return &RateLimiter{store: store.Namespace("rate"), now: time.Now}, nil
}

// Allow 判断指定 key 是否可以在当前窗口内继续执行。
func (l *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (RateResult, error) {
	if l == nil {
		return RateResult{}, fmt.Errorf("rate limiter not initialized / 限流器未初始化")
	}
	if limit <= 0 {
		return RateResult{}, fmt.Errorf("limit must be positive / limit 必须为正数")
	}
	if window <= 0 {
		window = time.Minute
	}

	ttl := window
	if remain, ok := l.store.TTL(ctx, key); ok && remain > 0 {
		ttl = remain
	}
	current, err := l.store.Increment(ctx, key, 1, ttl)
	if err != nil {
		return RateResult{}, fmt.Errorf("increment rate limit counter: %w", err)
	}

	remaining := limit - int(current)
	if remaining < 0 {
		remaining = 0
	}
	return RateResult{
		Allowed:   current <= int64(limit),
		Remaining: remaining,
		ResetAt:   l.now().UTC().Add(ttl),
	}, nil
}

// Reset 清除指定 key 的计数（例如登录成功后）。
func (l *RateLimiter) Reset(ctx context.Context, key string) {
	if l == nil {
		return
	}
	l.store.Delete(ctx, key)
}
