// 文件路径: internal/service/order_query.go
// 模块说明: 订单详情、列表、历史与按阶段统计，全部限定在当前餐厅内。
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"

	"github.com/orderdesk/orderdesk/internal/order"
	"github.com/orderdesk/orderdesk/internal/repository"
)

// OrderQueryService answers the read side of the order dashboard.
type OrderQueryService interface {
	Detail(ctx context.Context, scope Scope, orderID int64) (*OrderDetail, error)
	List(ctx context.Context, scope Scope, input OrderListInput) ([]OrderListItem, error)
	History(ctx context.Context, scope Scope, orderID int64) ([]HistoryEntry, error)
	Insights(ctx context.Context, scope Scope) (*Insights, error)
}

// OrderView is the order part of a detail response.
type OrderView struct {
	ID            int64     `json:"id"`
	Quantity      int64     `json:"quantity"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"payment_method"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProductView 订单详情中的商品信息。价格以字符串输出以保留精度。
type ProductView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	Total       string `json:"total"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// CustomerView 订单详情中的顾客信息。
type CustomerView struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// ProgressView describes where the order sits in the stage sequence.
type ProgressView struct {
	Stage      string   `json:"stage"`
	Index      int      `json:"index"`
	Percent    int      `json:"percent"`
	Rejected   bool     `json:"rejected"`
	CanAdvance bool     `json:"can_advance"`
	CanRetreat bool     `json:"can_retreat"`
	Stages     []string `json:"stages"`
}

// OrderDetail joins an order with its product, customer and progress.
type OrderDetail struct {
	Order    OrderView    `json:"order"`
	Product  ProductView  `json:"product"`
	Customer CustomerView `json:"customer"`
	Progress ProgressView `json:"progress"`
}

// OrderListInput filters the recent-orders listing.
type OrderListInput struct {
	Status string
	Limit  int
	Offset int
}

// OrderListItem 订单列表中的一行。
type OrderListItem struct {
	ID           int64     `json:"id"`
	ProductName  string    `json:"product_name"`
	CustomerName string    `json:"customer_name"`
	Quantity     int64     `json:"quantity"`
	Status       string    `json:"status"`
	Percent      int       `json:"progress"`
	CreatedAt    time.Time `json:"created_at"`
}

// HistoryEntry is one applied transition.
type HistoryEntry struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Actor     string    `json:"actor"`
	CreatedAt time.Time `json:"created_at"`
}

// StageCount 单个阶段的订单数。
type StageCount struct {
	Stage string `json:"stage"`
	Count int64  `json:"count"`
}

// Insights counts a restaurant's orders per stage. Stages always appear in
// sequence order followed by Recusado, zero-filled.
type Insights struct {
	Stages []StageCount `json:"stages"`
	Total  int64        `json:"total"`
	Active int64        `json:"active"`
	Other  int64        `json:"other"`
}

const (
	defaultListLimit = 20
	maxListLimit     = 200
)

var descriptionPolicy = sync.OnceValue(func() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	policy.AllowURLSchemes("http", "https")
	policy.AddSpaceWhenStrippingTag(true)
	return policy
})

type orderQueryService struct {
	store repository.Store
}

// NewOrderQueryService 创建订单查询服务。
func NewOrderQueryService(store repository.Store) OrderQueryService {
	return &orderQueryService{store: store}
}

func (s *orderQueryService) Detail(ctx context.Context, scope Scope, orderID int64) (*OrderDetail, error) {
	if !scope.Valid() {
		return nil, ErrUnauthorized
	}
	o, err := s.scopedOrder(ctx, scope, orderID)
	if err != nil {
		return nil, err
	}

	product, err := s.store.Products().FindByID(ctx, o.ProductID)
	if err != nil {
		return nil, notFoundOr(err, "load product %d", o.ProductID)
	}
	customer, err := s.store.Customers().FindByID(ctx, o.CustomerID)
	if err != nil {
		return nil, notFoundOr(err, "load customer %d", o.CustomerID)
	}

	return &OrderDetail{
		Order: OrderView{
			ID:            o.ID,
			Quantity:      o.Quantity,
			Status:        o.Status,
			PaymentMethod: o.PaymentMethod,
			CreatedAt:     time.Unix(o.CreatedAt, 0).UTC(),
			UpdatedAt:     time.Unix(o.UpdatedAt, 0).UTC(),
		},
		Product: ProductView{
			ID:          product.ID,
			Name:        product.Name,
			Price:       product.Price.StringFixed(2),
			Total:       product.Price.Mul(decimal.NewFromInt(o.Quantity)).StringFixed(2),
			Description: strings.TrimSpace(descriptionPolicy().Sanitize(product.Description)),
			Category:    product.Category,
		},
		Customer: CustomerView{
			ID:    customer.ID,
			Name:  customer.Name,
			Email: customer.Email,
			Phone: customer.Phone,
		},
		Progress: progressView(o.Status),
	}, nil
}

func (s *orderQueryService) List(ctx context.Context, scope Scope, input OrderListInput) ([]OrderListItem, error) {
	if !scope.Valid() {
		return nil, ErrUnauthorized
	}
	status := strings.TrimSpace(input.Status)
	if status != "" {
		if _, ok := order.ParseStage(status); !ok {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
		}
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := s.store.Orders().List(ctx, repository.OrderListFilter{
		RestaurantID: scope.RestaurantID,
		Status:       status,
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	out := make([]OrderListItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, OrderListItem{
			ID:           row.ID,
			ProductName:  row.ProductName,
			CustomerName: row.CustomerName,
			Quantity:     row.Quantity,
			Status:       row.Status,
			Percent:      order.ProgressOf(row.Status).Percent(),
			CreatedAt:    time.Unix(row.CreatedAt, 0).UTC(),
		})
	}
	return out, nil
}

func (s *orderQueryService) History(ctx context.Context, scope Scope, orderID int64) ([]HistoryEntry, error) {
	if !scope.Valid() {
		return nil, ErrUnauthorized
	}
	if _, err := s.scopedOrder(ctx, scope, orderID); err != nil {
		return nil, err
	}
	events, err := s.store.StatusEvents().ListByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list status events: %w", err)
	}
	out := make([]HistoryEntry, 0, len(events))
	for _, ev := range events {
		out = append(out, HistoryEntry{
			ID:        ev.ID,
			Action:    ev.Action,
			From:      ev.FromStatus,
			To:        ev.ToStatus,
			Actor:     ev.Actor,
			CreatedAt: time.Unix(ev.CreatedAt, 0).UTC(),
		})
	}
	return out, nil
}

func (s *orderQueryService) Insights(ctx context.Context, scope Scope) (*Insights, error) {
	if !scope.Valid() {
		return nil, ErrUnauthorized
	}
	counts, err := s.store.Orders().CountByStatus(ctx, scope.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("count orders by status: %w", err)
	}
	byStatus := make(map[string]int64, len(counts))
	for _, c := range counts {
		byStatus[c.Status] += c.Count
	}

	ins := &Insights{Stages: make([]StageCount, 0, len(order.Stages)+1)}
	known := make([]order.Stage, 0, len(order.Stages)+1)
	known = append(known, order.Stages[:]...)
	known = append(known, order.StageRejected)
	for _, st := range known {
		n := byStatus[string(st)]
		delete(byStatus, string(st))
		ins.Stages = append(ins.Stages, StageCount{Stage: string(st), Count: n})
		ins.Total += n
		if st != order.StagePending && st != order.StageRejected {
			ins.Active += n
		}
	}
	for _, n := range byStatus {
		ins.Other += n
		ins.Total += n
	}
	return ins, nil
}

func (s *orderQueryService) scopedOrder(ctx context.Context, scope Scope, orderID int64) (*repository.Order, error) {
	if orderID <= 0 {
		return nil, ErrNotFound
	}
	o, err := s.store.Orders().FindByID(ctx, orderID)
	if err != nil {
		return nil, notFoundOr(err, "load order %d", orderID)
	}
	if o.RestaurantID != scope.RestaurantID {
		return nil, ErrNotFound
	}
	return o, nil
}

func progressView(status string) ProgressView {
	p := order.ProgressOf(status)
	stages := make([]string, 0, len(order.Stages))
	for _, st := range order.Stages {
		stages = append(stages, string(st))
	}
	return ProgressView{
		Stage:      string(p.Stage()),
		Index:      p.Index,
		Percent:    p.Percent(),
		Rejected:   p.Rejected,
		CanAdvance: !p.Rejected && !p.AtEnd(),
		CanRetreat: !p.Rejected && !p.AtStart(),
		Stages:     stages,
	}
}

func notFoundOr(err error, format string, args ...any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
