// 文件路径: internal/bootstrap/infra.go
// 模块说明: 组装缓存、令牌、密码哈希、限流与审计等共享基础设施。
package bootstrap

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/orderdesk/orderdesk/internal/auth/token"
	"github.com/orderdesk/orderdesk/internal/cache"
	"github.com/orderdesk/orderdesk/internal/config"
	"github.com/orderdesk/orderdesk/internal/security"
	"github.com/orderdesk/orderdesk/internal/support/hash"
)

// Infrastructure bundles shared helpers required by services.
type Infrastructure struct {
	Cache       cache.Store
	Token       *token.Manager
	Hasher      hash.Hasher
	RateLimiter *security.RateLimiter
	Audit       security.Recorder
}

// BuildInfrastructure wires default implementations. signingKey is the
// already resolved JWT key (see ResolveJWTSigningKey).
func BuildInfrastructure(cfg *config.Config, signingKey string, logger *slog.Logger) (*Infrastructure, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required / 配置不能为空")
	}

	cacheStore := cache.NewStore(cache.Options{
		Prefix:          "orderdesk",
		DefaultTTL:      5 * time.Minute,
		CleanupInterval: time.Minute,
	})

	tokenManager, err := token.NewManager(token.Options{
		SigningKey: []byte(signingKey),
		Issuer:     cfg.Auth.Issuer,
		Audience:   cfg.Auth.Audience,
		TTL:        cfg.Auth.TokenTTL,
		Leeway:     cfg.Auth.Leeway,
	})
	if err != nil {
		return nil, fmt.Errorf("token manager: %w", err)
	}

	hasher, err := hash.NewBcryptHasher(cfg.Auth.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("bcrypt hasher: %w", err)
	}

	rateLimiter, err := security.NewRateLimiter(cacheStore)
	if err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	return &Infrastructure{
		Cache:       cacheStore,
		Token:       tokenManager,
		Hasher:      hasher,
		RateLimiter: rateLimiter,
		Audit:       security.NewLoggerRecorder(logger),
	}, nil
}
