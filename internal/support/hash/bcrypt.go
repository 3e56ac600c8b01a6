// 文件路径: internal/support/hash/bcrypt.go
// 模块说明: 管理员密码哈希。
package hash

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher 抽象密码哈希能力。
type Hasher interface {
	Hash(password string) (string, error)
	Compare(hashed, password string) error
}

// BcryptHasher 使用 golang.org/x/crypto/bcrypt 实现 Hasher。
type BcryptHasher struct {
	cost int
}

// ErrPasswordMismatch 表示密码与哈希不匹配。
var ErrPasswordMismatch = errors.New("password mismatch / 密码不匹配")

// NewBcryptHasher 校验 cost 并返回基于 bcrypt 的哈希器；cost 为 0 时使用默认值。
func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost must be between %d and %d / bcrypt cost 必须在 %d 到 %d 之间", bcrypt.MinCost, bcrypt.MaxCost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &BcryptHasher{cost: cost}, nil
}

// Hash 生成密码的 bcrypt 哈希。
func (h *BcryptHasher) Hash(password string) (string, error) {
	if h == nil {
		return "", fmt.Errorf("bcrypt hasher is required / bcrypt hasher 不能为空")
	}
	if password == "" {
		return "", fmt.Errorf("password is empty / 密码不能为空")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("password hash failed / 密码哈希失败: %w", err)
	}
	return string(hashed), nil
}

// Compare 校验明文密码与哈希是否匹配。
func (h *BcryptHasher) Compare(hashed, password string) error {
	if h == nil {
		return fmt.Errorf("bcrypt hasher is required / bcrypt hasher 不能为空")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("hash comparison failed / 校验哈希失败: %w", err)
	}
	return nil
}
