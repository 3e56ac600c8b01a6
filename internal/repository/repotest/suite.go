// Package repotest holds a behavioural suite every repository.Store
// implementation must pass.
package repotest

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderdesk/orderdesk/internal/repository"
)

// Fixture ids created by Seed.
type Fixture struct {
	RestaurantID int64
	OtherID      int64
	PizzaID      int64
	SodaID       int64
	SaladID      int64
	CustomerID   int64
	OrderIDs     []int64
	ForeignOrder int64
}

// Seed creates two restaurants with a small catalogue and order book.
func Seed(t *testing.T, store repository.Store) Fixture {
	t.Helper()
	ctx := context.Background()
	var f Fixture

	r1, err := store.Restaurants().Create(ctx, &repository.Restaurant{Name: "Cantina", CreatedAt: 1})
	require.NoError(t, err)
	r2, err := store.Restaurants().Create(ctx, &repository.Restaurant{Name: "Outra", CreatedAt: 1})
	require.NoError(t, err)
	f.RestaurantID, f.OtherID = r1.ID, r2.ID

	product := func(restaurantID int64, name string, views int64) int64 {
		p, err := store.Products().Create(ctx, &repository.Product{
			RestaurantID: restaurantID,
			Name:         name,
			Price:        decimal.RequireFromString("12.50"),
			Description:  name + " description",
			Category:     "food",
			Views:        views,
			CreatedAt:    1,
		})
		require.NoError(t, err)
		return p.ID
	}
	f.PizzaID = product(r1.ID, "Pizza", 30)
	f.SodaID = product(r1.ID, "Soda", 90)
	f.SaladID = product(r1.ID, "Salad", 60)
	foreignProduct := product(r2.ID, "Pizza", 1000)

	c, err := store.Customers().Create(ctx, &repository.Customer{Name: "Ana", Email: "ana@example.com", Phone: "555"})
	require.NoError(t, err)
	f.CustomerID = c.ID

	add := func(restaurantID, productID, qty int64, status string, createdAt int64) int64 {
		o, err := store.Orders().Create(ctx, &repository.Order{
			RestaurantID:  restaurantID,
			ProductID:     productID,
			CustomerID:    c.ID,
			Quantity:      qty,
			Status:        status,
			PaymentMethod: "pix",
			CreatedAt:     createdAt,
			UpdatedAt:     createdAt,
		})
		require.NoError(t, err)
		return o.ID
	}
	f.OrderIDs = []int64{
		add(r1.ID, f.PizzaID, 3, "Confirmado", 10),
		add(r1.ID, f.PizzaID, 2, "Entregue", 20),
		add(r1.ID, f.SodaID, 5, "Pendente", 30),
		add(r1.ID, f.SaladID, 1, "Recusado", 40),
	}
	f.ForeignOrder = add(r2.ID, foreignProduct, 9, "Entregue", 50)
	return f
}

// Run exercises every repository of store. The store must be empty.
func Run(t *testing.T, store repository.Store) {
	ctx := context.Background()
	f := Seed(t, store)

	t.Run("point lookups", func(t *testing.T) {
		o, err := store.Orders().FindByID(ctx, f.OrderIDs[0])
		require.NoError(t, err)
		assert.Equal(t, "Confirmado", o.Status)
		assert.Equal(t, f.PizzaID, o.ProductID)

		p, err := store.Products().FindByID(ctx, f.PizzaID)
		require.NoError(t, err)
		assert.Equal(t, "Pizza", p.Name)
		assert.True(t, p.Price.Equal(decimal.RequireFromString("12.5")))

		c, err := store.Customers().FindByID(ctx, f.CustomerID)
		require.NoError(t, err)
		assert.Equal(t, "Ana", c.Name)

		_, err = store.Orders().FindByID(ctx, 999999)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		_, err = store.Products().FindByID(ctx, 999999)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		_, err = store.Customers().FindByID(ctx, 999999)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("list lines by restaurant and status", func(t *testing.T) {
		lines, err := store.Orders().ListLines(ctx, repository.OrderLineFilter{
			RestaurantID: f.RestaurantID,
			Statuses:     []string{"Confirmado", "Em Preparo", "A Caminho", "Entregue"},
		})
		require.NoError(t, err)
		require.Len(t, lines, 2)
		for _, l := range lines {
			assert.Equal(t, "Pizza", l.ProductName)
		}

		all, err := store.Orders().ListLines(ctx, repository.OrderLineFilter{RestaurantID: f.RestaurantID})
		require.NoError(t, err)
		assert.Len(t, all, 4)
	})

	t.Run("products by views", func(t *testing.T) {
		list, err := store.Products().List(ctx, repository.ProductFilter{RestaurantID: f.RestaurantID, Limit: 2, OrderByViews: true})
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Soda", list[0].Name)
		assert.Equal(t, "Salad", list[1].Name)
	})

	t.Run("order summaries", func(t *testing.T) {
		list, err := store.Orders().List(ctx, repository.OrderListFilter{RestaurantID: f.RestaurantID, Limit: 10})
		require.NoError(t, err)
		require.Len(t, list, 4)
		assert.Equal(t, f.OrderIDs[3], list[0].ID, "newest first")
		assert.Equal(t, "Salad", list[0].ProductName)
		assert.Equal(t, "Ana", list[0].CustomerName)

		pending, err := store.Orders().List(ctx, repository.OrderListFilter{RestaurantID: f.RestaurantID, Status: "Pendente"})
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, "Soda", pending[0].ProductName)

		page, err := store.Orders().List(ctx, repository.OrderListFilter{RestaurantID: f.RestaurantID, Limit: 2, Offset: 2})
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, f.OrderIDs[1], page[0].ID)
	})

	t.Run("count by status", func(t *testing.T) {
		counts, err := store.Orders().CountByStatus(ctx, f.RestaurantID)
		require.NoError(t, err)
		got := map[string]int64{}
		for _, c := range counts {
			got[c.Status] = c.Count
		}
		assert.Equal(t, map[string]int64{"Confirmado": 1, "Entregue": 1, "Pendente": 1, "Recusado": 1}, got)
	})

	t.Run("update status touches one row", func(t *testing.T) {
		id := f.OrderIDs[2]
		require.NoError(t, store.Orders().UpdateStatus(ctx, id, "Confirmado", 99))
		o, err := store.Orders().FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Confirmado", o.Status)
		assert.Equal(t, int64(99), o.UpdatedAt)

		other, err := store.Orders().FindByID(ctx, f.OrderIDs[0])
		require.NoError(t, err)
		assert.Equal(t, int64(10), other.UpdatedAt)

		err = store.Orders().UpdateStatus(ctx, 999999, "Entregue", 1)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("status events", func(t *testing.T) {
		id := f.OrderIDs[0]
		for i, to := range []string{"Em Preparo", "A Caminho"} {
			require.NoError(t, store.StatusEvents().Append(ctx, &repository.StatusEvent{
				ID:           uuid.NewString(),
				OrderID:      id,
				RestaurantID: f.RestaurantID,
				Action:       "advance",
				FromStatus:   "x",
				ToStatus:     to,
				Actor:        "admin@example.com",
				CreatedAt:    int64(100 + i),
			}))
		}
		events, err := store.StatusEvents().ListByOrder(ctx, id)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "Em Preparo", events[0].ToStatus)

		removed, err := store.StatusEvents().DeleteBefore(ctx, 101)
		require.NoError(t, err)
		assert.Equal(t, int64(1), removed)
		events, err = store.StatusEvents().ListByOrder(ctx, id)
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})

	t.Run("admins", func(t *testing.T) {
		a, err := store.Admins().Create(ctx, &repository.Admin{RestaurantID: f.RestaurantID, Email: " Chef@Example.com ", Name: "Chef", PasswordHash: "h", CreatedAt: 1})
		require.NoError(t, err)
		assert.NotZero(t, a.ID)

		found, err := store.Admins().FindByEmail(ctx, "CHEF@example.com")
		require.NoError(t, err)
		assert.Equal(t, a.ID, found.ID)

		_, err = store.Admins().Create(ctx, &repository.Admin{RestaurantID: f.RestaurantID, Email: "chef@example.com", PasswordHash: "h"})
		assert.ErrorIs(t, err, repository.ErrConflict)

		require.NoError(t, store.Admins().TouchLogin(ctx, a.ID, 77))
		found, err = store.Admins().FindByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(77), found.LastLoginAt)

		list, err := store.Admins().List(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("settings", func(t *testing.T) {
		_, err := store.Settings().Get(ctx, "k")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		require.NoError(t, store.Settings().Upsert(ctx, &repository.Setting{Key: "k", Value: "v1", UpdatedAt: 1}))
		require.NoError(t, store.Settings().Upsert(ctx, &repository.Setting{Key: "k", Value: "v2", UpdatedAt: 2}))
		s, err := store.Settings().Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "v2", s.Value)
	})

	t.Run("restaurants", func(t *testing.T) {
		list, err := store.Restaurants().List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Cantina", list[0].Name)
	})
}
