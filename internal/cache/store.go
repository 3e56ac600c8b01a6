// 文件路径: internal/cache/store.go
// 模块说明: 进程内缓存（go-cache），用于排行榜结果与登录限流计数，支持命名空间。
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Store 定义排行缓存与限流共用的缓存接口。
type Store interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (any, bool)
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	Delete(ctx context.Context, key string)
	// DeletePrefix drops every key in this namespace starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) int
	TTL(ctx context.Context, key string) (time.Duration, bool)
	Namespace(prefix string) Store

	// Increment adds delta to the stored integer, returning the updated value.
	Increment(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error)
}

// Options 配置内存缓存行为。
type Options struct {
	DefaultTTL      time.Duration
	CleanupInterval time.Duration
	Prefix          string
}

// NewStore 创建基于 go-cache 的缓存实现。
func NewStore(opts Options) Store {
	defaultTTL := opts.DefaultTTL
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	cleanup := opts.CleanupInterval
	if cleanup <= 0 {
		cleanup = defaultTTL
	}
	return &goCacheStore{
		backend:    gocache.New(defaultTTL, cleanup),
		defaultTTL: defaultTTL,
		prefix:     normalizePrefix(opts.Prefix),
	}
}

type goCacheStore struct {
	backend    *gocache.Cache
	defaultTTL time.Duration
	prefix     string
}

func (s *goCacheStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	s.backend.Set(s.prefixed(key), value, s.normalizeTTL(ttl))
	return nil
}

// SetJSON stores the encoded value so readers never share mutable state with the writer.
func (s *goCacheStore) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, data, ttl)
}

func (s *goCacheStore) Get(_ context.Context, key string) (any, bool) {
	return s.backend.Get(s.prefixed(key))
}

func (s *goCacheStore) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	raw, ok := s.Get(ctx, key)
	if !ok {
		return false, nil
	}
	data, ok := raw.([]byte)
	if !ok {
		return false, fmt.Errorf("cache key %q does not hold json / 缓存值不是 JSON", key)
	}
	if dest == nil {
		return true, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (s *goCacheStore) Delete(_ context.Context, key string) {
	s.backend.Delete(s.prefixed(key))
}

func (s *goCacheStore) DeletePrefix(_ context.Context, prefix string) int {
	full := s.prefixed(prefix)
	removed := 0
	for key := range s.backend.Items() {
		if strings.HasPrefix(key, full) {
			s.backend.Delete(key)
			removed++
		}
	}
	return removed
}

func (s *goCacheStore) TTL(_ context.Context, key string) (time.Duration, bool) {
	_, exp, ok := s.backend.GetWithExpiration(s.prefixed(key))
	if !ok || exp.IsZero() {
		return 0, false
	}
	ttl := time.Until(exp)
	if ttl < 0 {
		return 0, false
	}
	return ttl, true
}

func (s *goCacheStore) Namespace(prefix string) Store {
	return &goCacheStore{
		backend:    s.backend,
		defaultTTL: s.defaultTTL,
		prefix:     joinPrefixes(s.prefix, prefix),
	}
}

func (s *goCacheStore) Increment(_ context.Context, key string, delta int64, ttl time.Duration) (int64, error) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return 0, nil
	}
	full := s.prefixed(trimmed)
	ttl = s.normalizeTTL(ttl)
	// Add 仅在 key 不存在时生效，并发下不会覆盖已有计数。
	_ = s.backend.Add(full, int64(0), ttl)
	current, err := s.backend.IncrementInt64(full, delta)
	if err != nil {
		return 0, fmt.Errorf("cache increment failed: %w", err)
	}
	return current, nil
}

func (s *goCacheStore) prefixed(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return s.prefix
	}
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

func (s *goCacheStore) normalizeTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return s.defaultTTL
	}
	return ttl
}

func normalizePrefix(prefix string) string {
	return strings.Trim(prefix, ": ")
}

func joinPrefixes(parts ...string) string {
	var normalized []string
	for _, part := range parts {
		if trimmed := normalizePrefix(part); trimmed != "" {
			normalized = append(normalized, trimmed)
		}
	}
	return strings.Join(normalized, ":")
}
