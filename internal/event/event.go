// 文件路径: internal/event/event.go
// 模块说明: 订单状态变更事件及其发布接口。发布失败只记录日志，不影响状态写入。
package event

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

// StatusChanged is emitted after an order status was persisted.
type StatusChanged struct {
	EventID      string    `json:"event_id"`
	OrderID      int64     `json:"order_id"`
	RestaurantID int64     `json:"restaurant_id"`
	Action       string    `json:"action"`
	From         string    `json:"from"`
	To           string    `json:"to"`
	Actor        string    `json:"actor"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// RoutingKey returns "order.status.<to>" with the stage slugged, e.g.
// "Em Preparo" becomes "order.status.em_preparo".
func (e StatusChanged) RoutingKey() string {
	slug := strings.ToLower(strings.TrimSpace(e.To))
	slug = strings.ReplaceAll(slug, " ", "_")
	if slug == "" {
		slug = "unknown"
	}
	return "order.status." + slug
}

// Publisher delivers status events to one sink.
type Publisher interface {
	Publish(ctx context.Context, ev StatusChanged) error
}

// PublisherFunc 允许用函数实现 Publisher。
type PublisherFunc func(ctx context.Context, ev StatusChanged) error

// Publish implements Publisher.
func (f PublisherFunc) Publish(ctx context.Context, ev StatusChanged) error {
	return f(ctx, ev)
}

// Multi fans an event out to every publisher. All publishers are tried; the
// errors are joined.
type Multi []Publisher

// Publish implements Publisher.
func (m Multi) Publish(ctx context.Context, ev StatusChanged) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogPublisher writes every event to the structured log.
type LogPublisher struct {
	Logger *slog.Logger
}

// Publish implements Publisher.
func (p LogPublisher) Publish(ctx context.Context, ev StatusChanged) error {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "order status changed",
		"event_id", ev.EventID,
		"order_id", ev.OrderID,
		"restaurant_id", ev.RestaurantID,
		"action", ev.Action,
		"from", ev.From,
		"to", ev.To,
		"actor", ev.Actor,
	)
	return nil
}
