// 文件路径: internal/service/admin.go
// 模块说明: 后台账号管理，供命令行 admin create/list 使用。
package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/orderdesk/orderdesk/internal/repository"
	"github.com/orderdesk/orderdesk/internal/support/hash"
)

// AdminService creates and lists dashboard accounts.
type AdminService interface {
	Create(ctx context.Context, input CreateAdminInput) (*AdminView, error)
	List(ctx context.Context) ([]AdminView, error)
}

// CreateAdminInput 创建后台账号的参数。
type CreateAdminInput struct {
	RestaurantID int64
	Email        string
	Name         string
	Password     string
}

// AdminView hides the password hash.
type AdminView struct {
	ID           int64     `json:"id"`
	RestaurantID int64     `json:"restaurant_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	LastLoginAt  time.Time `json:"last_login_at,omitempty"`
}

const minPasswordLength = 8

// ErrEmailExists indicates the admin email is taken.
var ErrEmailExists = errors.New("service: email already exists / 邮箱已存在")

type adminService struct {
	store  repository.Store
	hasher hash.Hasher
	now    func() time.Time
}

// NewAdminService 创建账号管理服务。
func NewAdminService(store repository.Store, hasher hash.Hasher, now func() time.Time) AdminService {
	if now == nil {
		now = time.Now
	}
	return &adminService{store: store, hasher: hasher, now: now}
}

func (s *adminService) Create(ctx context.Context, input CreateAdminInput) (*AdminView, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email %q / 邮箱格式错误", ErrInvalidInput, input.Email)
	}
	if len(input.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must have at least %d characters / 密码至少 %d 位", ErrInvalidInput, minPasswordLength, minPasswordLength)
	}
	if _, err := s.store.Restaurants().FindByID(ctx, input.RestaurantID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: restaurant %d", ErrNotFound, input.RestaurantID)
		}
		return nil, err
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = email
	}
	created, err := s.store.Admins().Create(ctx, &repository.Admin{
		RestaurantID: input.RestaurantID,
		Email:        email,
		Name:         name,
		PasswordHash: hashed,
		CreatedAt:    s.now().Unix(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create admin: %w", err)
	}
	view := toAdminView(created)
	return &view, nil
}

func (s *adminService) List(ctx context.Context) ([]AdminView, error) {
	admins, err := s.store.Admins().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	out := make([]AdminView, 0, len(admins))
	for _, a := range admins {
		out = append(out, toAdminView(a))
	}
	return out, nil
}

func toAdminView(a *repository.Admin) AdminView {
	v := AdminView{
		ID:           a.ID,
		RestaurantID: a.RestaurantID,
		Email:        a.Email,
		Name:         a.Name,
		CreatedAt:    time.Unix(a.CreatedAt, 0).UTC(),
	}
	if a.LastLoginAt > 0 {
		v.LastLoginAt = time.Unix(a.LastLoginAt, 0).UTC()
	}
	return v
}
