// 文件路径: internal/event/rabbit.go
// 模块说明: 把状态变更发布到 RabbitMQ topic exchange，供厨房、通知等下游服务订阅。
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/orderdesk/orderdesk/internal/support/retry"
)

// Channel is the subset of *amqp.Channel the publisher needs.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitOptions 配置 RabbitMQ 发布者。
type RabbitOptions struct {
	URL      string
	Exchange string
	Retry    retry.Config
}

// RabbitPublisher publishes StatusChanged as persistent JSON messages.
type RabbitPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  Channel
	exchange string
	logger   *slog.Logger
}

// DialRabbit connects with exponential backoff and declares the exchange.
func DialRabbit(ctx context.Context, opts RabbitOptions, logger *slog.Logger) (*RabbitPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var conn *amqp.Connection
	err := retry.Do(ctx, opts.Retry, func(context.Context) error {
		c, err := amqp.Dial(opts.URL)
		if err != nil {
			return err
		}
		conn = c
		return nil
	}, func(attempt uint64, wait time.Duration, err error) {
		logger.Warn("rabbitmq not ready, retrying", "attempt", attempt, "wait", wait, "error", err)
	})
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}
	p, err := NewRabbitPublisher(ch, opts.Exchange, logger)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	logger.Info("rabbitmq publisher ready", "exchange", opts.Exchange)
	return p, nil
}

// NewRabbitPublisher declares a durable topic exchange on ch.
func NewRabbitPublisher(ch Channel, exchange string, logger *slog.Logger) (*RabbitPublisher, error) {
	if ch == nil {
		return nil, fmt.Errorf("rabbitmq channel is required / 需要 rabbitmq channel")
	}
	if exchange == "" {
		return nil, fmt.Errorf("rabbitmq exchange is required / 需要 exchange 名称")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &RabbitPublisher{channel: ch, exchange: exchange, logger: logger.With("component", "rabbitmq")}, nil
}

// Publish implements Publisher.
func (p *RabbitPublisher) Publish(ctx context.Context, ev StatusChanged) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode status event: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EventID,
		Timestamp:    ev.OccurredAt,
		Type:         "order.status_changed",
		Body:         body,
	}

	// amqp.Channel 不支持并发发布。
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.channel.PublishWithContext(ctx, p.exchange, ev.RoutingKey(), false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", ev.RoutingKey(), err)
	}
	return nil
}

// Close 关闭 channel 与连接。
func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.channel.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
