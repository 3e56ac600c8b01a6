// 文件路径: internal/auth/token/manager.go
// 模块说明: 签发和校验后台会话 JWT。令牌里携带管理员 ID 与所属餐厅 ID。
package token

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Manager 负责签发和校验 JWT。
type Manager struct {
	method   jwt.SigningMethod
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	leeway   time.Duration
	now      func() time.Time
}

// Options 配置 Token 管理器。
type Options struct {
	SigningKey []byte
	Issuer     string
	Audience   string
	TTL        time.Duration
	Leeway     time.Duration
	SigningAlg string
	Now        func() time.Time
}

// Claims 包含 JWT 标准声明及会话身份。
type Claims struct {
	jwt.RegisteredClaims
	RestaurantID int64  `json:"rid"`
	Email        string `json:"email,omitempty"`
	SessionID    string `json:"sid,omitempty"`
}

// AdminID parses the subject back into the admin id.
func (c *Claims) AdminID() int64 {
	id, _ := strconv.ParseInt(c.Subject, 10, 64)
	return id
}

// IssueInput 定义签发令牌时的参数。
type IssueInput struct {
	AdminID      int64
	RestaurantID int64
	Email        string
	SessionID    string
	TTL          time.Duration
}

var (
	// ErrInvalidToken 表示解析或校验失败。
	ErrInvalidToken = errors.New("invalid token / 无效的 token")
	// ErrExpiredToken 表示令牌超出允许的过期宽限。
	ErrExpiredToken = errors.New("token expired / token 已过期")
)

// NewManager 组装 JWT 管理器；未指定 SigningAlg 时默认使用 HS256。
func NewManager(opts Options) (*Manager, error) {
	if len(opts.SigningKey) == 0 {
		return nil, fmt.Errorf("signing key is required / 签名密钥不能为空")
	}
	method := jwt.GetSigningMethod(strings.ToUpper(strings.TrimSpace(opts.SigningAlg)))
	if method == nil {
		method = jwt.SigningMethodHS256
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	leeway := opts.Leeway
	if leeway < 0 {
		leeway = 0
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{
		method:   method,
		secret:   append([]byte(nil), opts.SigningKey...),
		issuer:   strings.TrimSpace(opts.Issuer),
		audience: strings.TrimSpace(opts.Audience),
		ttl:      ttl,
		leeway:   leeway,
		now:      now,
	}, nil
}

// Issue 签发会话令牌。
func (m *Manager) Issue(input IssueInput) (string, *Claims, error) {
	if m == nil {
		return "", nil, fmt.Errorf("token manager not initialized / token 管理器未初始化")
	}
	if input.AdminID <= 0 {
		return "", nil, fmt.Errorf("admin id is required / 管理员 ID 不能为空")
	}
	if input.RestaurantID <= 0 {
		return "", nil, fmt.Errorf("restaurant id is required / 餐厅 ID 不能为空")
	}
	ttl := input.TTL
	if ttl <= 0 {
		ttl = m.ttl
	}

	now := m.now().UTC()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   strconv.FormatInt(input.AdminID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		RestaurantID: input.RestaurantID,
		Email:        input.Email,
		SessionID:    input.SessionID,
	}
	if m.audience != "" {
		claims.Audience = jwt.ClaimStrings{m.audience}
	}

	signed, err := jwt.NewWithClaims(m.method, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// Parse 校验 JWT 字符串并返回解析后的声明。
func (m *Manager) Parse(tokenString string) (*Claims, error) {
	if m == nil {
		return nil, fmt.Errorf("token manager not initialized / token 管理器未初始化")
	}
	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithLeeway(m.leeway),
	)
	parsed, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if err := m.validateClaims(claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// validateClaims 校验签发方、受众与会话身份。
func (m *Manager) validateClaims(claims *Claims) error {
	if claims.ExpiresAt == nil {
		return ErrExpiredToken
	}
	if m.issuer != "" && claims.Issuer != m.issuer {
		return ErrInvalidToken
	}
	if m.audience != "" {
		allowed := false
		for _, aud := range claims.Audience {
			if aud == m.audience {
				allowed = true
				break
			}
		}
		if !allowed {
			return ErrInvalidToken
		}
	}
	if claims.AdminID() <= 0 || claims.RestaurantID <= 0 {
		return ErrInvalidToken
	}
	return nil
}
