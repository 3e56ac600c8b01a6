// 文件路径: internal/service/auth.go
// 模块说明: 后台登录与令牌校验。令牌中的餐厅 ID 决定了后续请求的 Scope。
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/orderdesk/orderdesk/internal/auth/token"
	"github.com/orderdesk/orderdesk/internal/repository"
	"github.com/orderdesk/orderdesk/internal/security"
	"github.com/orderdesk/orderdesk/internal/support/hash"
)

// AuthService signs admins in and turns bearer tokens back into a Scope.
type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	Verify(ctx context.Context, rawToken string) (Scope, error)
}

// LoginInput represents the payload required for admin login.
type LoginInput struct {
	Email    string
	Password string
	IP       string
}

// LoginResult returns issued token information.
type LoginResult struct {
	Token        string    `json:"token"`
	ExpiresAt    time.Time `json:"expires_at"`
	AdminID      int64     `json:"admin_id"`
	RestaurantID int64     `json:"restaurant_id"`
}

// AuthOptions 注入认证依赖。
type AuthOptions struct {
	Admins      repository.AdminRepository
	Hasher      hash.Hasher
	Tokens      *token.Manager
	Rate        *security.RateLimiter
	Audit       security.Recorder
	LoginLimit  int
	LoginWindow time.Duration
	Now         func() time.Time
}

type authService struct {
	admins      repository.AdminRepository
	hasher      hash.Hasher
	tokens      *token.Manager
	rate        *security.RateLimiter
	audit       security.Recorder
	loginLimit  int
	loginWindow time.Duration
	now         func() time.Time
}

// NewAuthService wires repository + infrastructure helpers.
func NewAuthService(opts AuthOptions) (AuthService, error) {
	if opts.Admins == nil || opts.Hasher == nil || opts.Tokens == nil {
		return nil, fmt.Errorf("auth service not fully configured / 认证服务未完整配置")
	}
	limit := opts.LoginLimit
	if limit <= 0 {
		limit = 10
	}
	window := opts.LoginWindow
	if window <= 0 {
		window = 10 * time.Minute
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &authService{
		admins:      opts.Admins,
		hasher:      opts.Hasher,
		tokens:      opts.Tokens,
		rate:        opts.Rate,
		audit:       opts.Audit,
		loginLimit:  limit,
		loginWindow: window,
		now:         now,
	}, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: email and password required / 邮箱和密码不能为空", ErrInvalidInput)
	}

	limitKey := "login:" + email
	if s.rate != nil {
		res, err := s.rate.Allow(ctx, limitKey, s.loginLimit, s.loginWindow)
		if err != nil {
			return nil, err
		}
		if !res.Allowed {
			s.record(ctx, security.KindLoginThrottled, email, 0, input.IP, map[string]any{"limit": s.loginLimit})
			return nil, ErrRateLimited
		}
	}

	admin, err := s.admins.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.record(ctx, security.KindLoginFailed, email, 0, input.IP, map[string]any{"reason": "not_found"})
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find admin: %w", err)
	}
	if err := s.hasher.Compare(admin.PasswordHash, input.Password); err != nil {
		if errors.Is(err, hash.ErrPasswordMismatch) {
			s.record(ctx, security.KindLoginFailed, email, admin.RestaurantID, input.IP, map[string]any{"reason": "password"})
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("compare password: %w", err)
	}

	signed, claims, err := s.tokens.Issue(token.IssueInput{
		AdminID:      admin.ID,
		RestaurantID: admin.RestaurantID,
		Email:        admin.Email,
		SessionID:    uuid.NewString(),
	})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	if s.rate != nil {
		s.rate.Reset(ctx, limitKey)
	}
	if err := s.admins.TouchLogin(ctx, admin.ID, s.now().Unix()); err != nil {
		// 登录时间只用于展示，失败不影响登录。
		s.record(ctx, security.KindLoginSucceeded, email, admin.RestaurantID, input.IP, map[string]any{"touch_error": err.Error()})
	} else {
		s.record(ctx, security.KindLoginSucceeded, email, admin.RestaurantID, input.IP, nil)
	}

	return &LoginResult{
		Token:        signed,
		ExpiresAt:    claims.ExpiresAt.Time,
		AdminID:      admin.ID,
		RestaurantID: admin.RestaurantID,
	}, nil
}

func (s *authService) Verify(_ context.Context, rawToken string) (Scope, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return Scope{}, ErrUnauthorized
	}
	claims, err := s.tokens.Parse(rawToken)
	if err != nil {
		return Scope{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return Scope{
		RestaurantID: claims.RestaurantID,
		AdminID:      claims.AdminID(),
		Email:        claims.Email,
	}, nil
}

func (s *authService) record(ctx context.Context, kind, actor string, restaurantID int64, ip string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, security.Event{
		Kind:         kind,
		Actor:        actor,
		RestaurantID: restaurantID,
		IP:           ip,
		Metadata:     meta,
		Occurred:     s.now(),
	})
}
