package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderdesk/orderdesk/internal/repository"
)

func TestDetailJoinsAndSanitizes(t *testing.T) {
	store, fx := seeded(t)
	ctx := context.Background()
	scope := Scope{RestaurantID: fx.RestaurantID}

	p, err := store.Products().Create(ctx, &repository.Product{
		RestaurantID: fx.RestaurantID,
		Name:         "Burger",
		Price:        decimal.RequireFromString("19.9"),
		Description:  `<b>Artesanal</b><script>alert(1)</script>`,
	})
	require.NoError(t, err)
	o, err := store.Orders().Create(ctx, &repository.Order{
		RestaurantID: fx.RestaurantID, ProductID: p.ID, CustomerID: fx.CustomerID,
		Quantity: 2, Status: "A Caminho", PaymentMethod: "card", CreatedAt: 60, UpdatedAt: 60,
	})
	require.NoError(t, err)

	svc := NewOrderQueryService(store)
	d, err := svc.Detail(ctx, scope, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "<b>Artesanal</b>", d.Product.Description)
	assert.Equal(t, "19.90", d.Product.Price)
	assert.Equal(t, "39.80", d.Product.Total)
	assert.Equal(t, "Ana", d.Customer.Name)
	assert.Equal(t, "A Caminho", d.Progress.Stage)
	assert.Equal(t, 80, d.Progress.Percent)
	assert.True(t, d.Progress.CanAdvance)
	assert.True(t, d.Progress.CanRetreat)
	assert.Len(t, d.Progress.Stages, 5)
}

func TestDetailMissingJoinsAreNotFound(t *testing.T) {
	store, fx := seeded(t)
	ctx := context.Background()
	scope := Scope{RestaurantID: fx.RestaurantID}
	svc := NewOrderQueryService(store)

	orphan, err := store.Orders().Create(ctx, &repository.Order{
		RestaurantID: fx.RestaurantID, ProductID: fx.PizzaID, CustomerID: 424242,
		Quantity: 1, Status: "Pendente",
	})
	require.NoError(t, err)
	_, err = svc.Detail(ctx, scope, orphan.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Detail(ctx, scope, fx.ForeignOrder)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Detail(ctx, scope, 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDetailRejectedProgress(t *testing.T) {
	store, fx := seeded(t)
	d, err := NewOrderQueryService(store).Detail(context.Background(), Scope{RestaurantID: fx.RestaurantID}, fx.OrderIDs[3])
	require.NoError(t, err)
	assert.True(t, d.Progress.Rejected)
	assert.Equal(t, "Recusado", d.Progress.Stage)
	assert.Zero(t, d.Progress.Percent)
	assert.False(t, d.Progress.CanAdvance)
	assert.False(t, d.Progress.CanRetreat)
}

func TestListFiltersAndValidates(t *testing.T) {
	store, fx := seeded(t)
	ctx := context.Background()
	svc := NewOrderQueryService(store)
	scope := Scope{RestaurantID: fx.RestaurantID}

	all, err := svc.List(ctx, scope, OrderListInput{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, fx.OrderIDs[3], all[0].ID)

	delivered, err := svc.List(ctx, scope, OrderListInput{Status: "Entregue"})
	require.NoError(t, err)
	require.Len(t, delivered, 1)
	assert.Equal(t, 100, delivered[0].Percent)

	_, err = svc.List(ctx, scope, OrderListInput{Status: "Cancelado"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestHistoryIsScoped(t *testing.T) {
	store, fx := seeded(t)
	svc := NewOrderQueryService(store)
	_, err := svc.History(context.Background(), Scope{RestaurantID: fx.RestaurantID}, fx.ForeignOrder)
	assert.ErrorIs(t, err, ErrNotFound)

	entries, err := svc.History(context.Background(), Scope{RestaurantID: fx.RestaurantID}, fx.OrderIDs[0])
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestInsightsZeroFillsStages(t *testing.T) {
	store, fx := seeded(t)
	ins, err := NewOrderQueryService(store).Insights(context.Background(), Scope{RestaurantID: fx.RestaurantID})
	require.NoError(t, err)

	require.Len(t, ins.Stages, 6)
	assert.Equal(t, StageCount{Stage: "Pendente", Count: 1}, ins.Stages[0])
	assert.Equal(t, StageCount{Stage: "Em Preparo", Count: 0}, ins.Stages[2])
	assert.Equal(t, StageCount{Stage: "Recusado", Count: 1}, ins.Stages[5])
	assert.Equal(t, int64(4), ins.Total)
	assert.Equal(t, int64(2), ins.Active)
	assert.Zero(t, ins.Other)
}
