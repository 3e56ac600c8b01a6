// 文件路径: internal/service/order_tracker.go
// 模块说明: 订单状态流转。加载订单、校验餐厅归属，再交给 order.Tracker 执行；
// 成功后写历史、发事件、清理排行缓存。
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/orderdesk/orderdesk/internal/event"
	"github.com/orderdesk/orderdesk/internal/order"
	"github.com/orderdesk/orderdesk/internal/repository"
	"github.com/orderdesk/orderdesk/internal/security"
)

// OrderTrackerService moves orders through their stages on behalf of a restaurant.
type OrderTrackerService interface {
	Advance(ctx context.Context, scope Scope, orderID int64) (*TransitionResult, error)
	Retreat(ctx context.Context, scope Scope, orderID int64) (*TransitionResult, error)
	Reject(ctx context.Context, scope Scope, orderID int64) (*TransitionResult, error)
	Apply(ctx context.Context, scope Scope, orderID int64, action order.Action) (*TransitionResult, error)
}

// TransitionResult is returned to the dashboard after a transition attempt.
type TransitionResult struct {
	OrderID  int64  `json:"order_id"`
	Action   string `json:"action"`
	From     string `json:"from"`
	To       string `json:"to"`
	Changed  bool   `json:"changed"`
	Percent  int    `json:"progress"`
	Rejected bool   `json:"rejected"`
}

// CacheInvalidator drops derived data for a restaurant after its orders change.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, restaurantID int64)
}

// OrderTrackerOptions 注入依赖。
type OrderTrackerOptions struct {
	Store       repository.Store
	Publisher   event.Publisher
	Invalidator CacheInvalidator
	Audit       security.Recorder
	Metrics     *Metrics
	Logger      *slog.Logger
	Now         func() time.Time
}

const orderLockStripes = 64

type orderTrackerService struct {
	store       repository.Store
	publisher   event.Publisher
	invalidator CacheInvalidator
	audit       security.Recorder
	metrics     *Metrics
	logger      *slog.Logger
	now         func() time.Time

	flight singleflight.Group
	locks  [orderLockStripes]sync.Mutex
}

// NewOrderTrackerService wires the tracker service.
func NewOrderTrackerService(opts OrderTrackerOptions) (OrderTrackerService, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("order tracker requires a store / 订单流转需要存储")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &orderTrackerService{
		store:       opts.Store,
		publisher:   opts.Publisher,
		invalidator: opts.Invalidator,
		audit:       opts.Audit,
		metrics:     opts.Metrics,
		logger:      logger.With("component", "order_tracker"),
		now:         now,
	}, nil
}

func (s *orderTrackerService) Advance(ctx context.Context, scope Scope, orderID int64) (*TransitionResult, error) {
	return s.Apply(ctx, scope, orderID, order.ActionAdvance)
}

func (s *orderTrackerService) Retreat(ctx context.Context, scope Scope, orderID int64) (*TransitionResult, error) {
	return s.Apply(ctx, scope, orderID, order.ActionRetreat)
}

func (s *orderTrackerService) Reject(ctx context.Context, scope Scope, orderID int64) (*TransitionResult, error) {
	return s.Apply(ctx, scope, orderID, order.ActionReject)
}

// Apply 对同一订单同一动作的并发请求只执行一次，同一订单的不同动作串行执行。
func (s *orderTrackerService) Apply(ctx context.Context, scope Scope, orderID int64, action order.Action) (*TransitionResult, error) {
	if !scope.Valid() {
		return nil, ErrUnauthorized
	}
	if orderID <= 0 {
		return nil, ErrNotFound
	}
	if _, err := order.ParseAction(string(action)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	key := fmt.Sprintf("%d:%d:%s", scope.RestaurantID, orderID, action)
	v, err, _ := s.flight.Do(key, func() (any, error) {
		lock := &s.locks[orderID%orderLockStripes]
		lock.Lock()
		defer lock.Unlock()
		return s.apply(ctx, scope, orderID, action)
	})
	if err != nil {
		return nil, err
	}
	res := *v.(*TransitionResult)
	return &res, nil
}

func (s *orderTrackerService) apply(ctx context.Context, scope Scope, orderID int64, action order.Action) (*TransitionResult, error) {
	current, err := s.store.Orders().FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load order %d: %w", orderID, err)
	}
	if current.RestaurantID != scope.RestaurantID {
		return nil, ErrNotFound
	}

	writer := order.StatusWriterFunc(func(ctx context.Context, id int64, status order.Stage) error {
		return s.store.Orders().UpdateStatus(ctx, id, string(status), s.now().Unix())
	})
	tracker := order.NewTracker(current.ID, current.Status, writer, order.WithObserver(&failureObserver{svc: s, scope: scope}))

	tr, err := tracker.Apply(ctx, action)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrRejected):
			return nil, ErrRejected
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNotFound
		default:
			return nil, fmt.Errorf("%w: %w", ErrStoreUpdate, err)
		}
	}

	progress := tracker.Progress()
	result := &TransitionResult{
		OrderID:  tr.OrderID,
		Action:   string(tr.Action),
		From:     string(tr.From),
		To:       string(tr.To),
		Changed:  tr.Changed,
		Percent:  progress.Percent(),
		Rejected: progress.Rejected,
	}
	if tr.Changed {
		s.afterTransition(ctx, scope, tr)
	}
	return result, nil
}

// afterTransition 的每一步失败都只记录日志，状态已经写入成功。
func (s *orderTrackerService) afterTransition(ctx context.Context, scope Scope, tr order.Transition) {
	now := s.now()
	ev := &repository.StatusEvent{
		ID:           uuid.NewString(),
		OrderID:      tr.OrderID,
		RestaurantID: scope.RestaurantID,
		Action:       string(tr.Action),
		FromStatus:   string(tr.From),
		ToStatus:     string(tr.To),
		Actor:        scope.Actor(),
		CreatedAt:    now.Unix(),
	}
	if err := s.store.StatusEvents().Append(ctx, ev); err != nil {
		s.logger.Error("append status event failed", "order_id", tr.OrderID, "error", err)
	}

	s.metrics.transition(string(tr.Action), string(tr.To))
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, scope.RestaurantID)
	}
	if s.audit != nil {
		s.audit.Record(ctx, security.Event{
			Kind:         security.KindOrderTransition,
			Actor:        scope.Actor(),
			RestaurantID: scope.RestaurantID,
			Metadata:     map[string]any{"order_id": tr.OrderID, "action": tr.Action, "from": tr.From, "to": tr.To},
			Occurred:     now,
		})
	}
	if s.publisher != nil {
		err := s.publisher.Publish(ctx, event.StatusChanged{
			EventID:      ev.ID,
			OrderID:      tr.OrderID,
			RestaurantID: scope.RestaurantID,
			Action:       string(tr.Action),
			From:         string(tr.From),
			To:           string(tr.To),
			Actor:        scope.Actor(),
			OccurredAt:   now.UTC(),
		})
		if err != nil {
			s.logger.Warn("publish status event failed", "order_id", tr.OrderID, "error", err)
		}
	}
	s.logger.Info("order status changed", "order_id", tr.OrderID, "restaurant_id", scope.RestaurantID, "from", tr.From, "to", tr.To, "actor", scope.Actor())
}

type failureObserver struct {
	svc   *orderTrackerService
	scope Scope
}

func (o *failureObserver) TransitionApplied(context.Context, order.Transition) {}

func (o *failureObserver) TransitionFailed(ctx context.Context, tr order.Transition, err error) {
	o.svc.logger.Error("order status write failed",
		"order_id", tr.OrderID,
		"restaurant_id", o.scope.RestaurantID,
		"action", tr.Action,
		"from", tr.From,
		"to", tr.To,
		"error", err,
	)
	o.svc.metrics.failure(string(tr.Action))
	if o.svc.audit != nil {
		o.svc.audit.Record(ctx, security.Event{
			Kind:         security.KindOrderWriteFailed,
			Actor:        o.scope.Actor(),
			RestaurantID: o.scope.RestaurantID,
			Metadata:     map[string]any{"order_id": tr.OrderID, "action": tr.Action, "to": tr.To, "error": err.Error()},
			Occurred:     o.svc.now(),
		})
	}
}
