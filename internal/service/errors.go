// 文件路径: internal/service/errors.go
// 模块说明: 业务层的哨兵错误，HTTP 层根据它们映射状态码与 i18n 文案。
package service

import (
	"errors"

	"github.com/orderdesk/orderdesk/internal/order"
)

var (
	// ErrNotFound indicates requested resource does not exist or belongs to another restaurant.
	ErrNotFound = errors.New("service: not found / 未找到资源")
	// ErrInvalidCredentials indicates provided credentials are wrong.
	ErrInvalidCredentials = errors.New("service: invalid credentials / 凭证无效")
	// ErrRateLimited indicates caller exceeded allowed attempts.
	ErrRateLimited = errors.New("service: rate limited / 请求过于频繁")
	// ErrUnauthorized indicates missing or invalid auth tokens.
	ErrUnauthorized = errors.New("service: unauthorized / 未授权")
	// ErrInvalidInput indicates malformed arguments.
	ErrInvalidInput = errors.New("service: invalid input / 参数无效")
	// ErrStoreUpdate indicates the status could not be persisted; the order is unchanged.
	ErrStoreUpdate = errors.New("service: store update failed / 状态写入失败")
	// ErrRejected is returned for advance/retreat on a rejected order.
	ErrRejected = order.ErrRejected
)
