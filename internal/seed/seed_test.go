package seed

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/orderdesk/orderdesk/internal/repository"
	"github.com/orderdesk/orderdesk/internal/repository/memory"
	"github.com/orderdesk/orderdesk/internal/service"
	"github.com/orderdesk/orderdesk/internal/support/hash"
)

const sample = `
customers:
  - name: Ana
    email: ana@example.com
    phone: "555-0100"
restaurants:
  - name: Cantina
    admins:
      - email: chef@example.com
        name: Chef
        password: correct horse
    products:
      - name: Pizza
        price: "42.90"
        category: Pratos
        views: 120
      - name: Soda
        price: "6.00"
        category: Bebidas
        views: 300
    orders:
      - product: Pizza
        customer: ana@example.com
        quantity: 2
        status: Confirmado
        age_minutes: 30
      - product: Soda
        customer: ANA@example.com
        quantity: 1
        status: Pendente
`

func TestDecodeAndApply(t *testing.T) {
	f, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)

	store := memory.NewStore()
	hasher, err := hash.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	now := time.Unix(1_700_000_000, 0)

	res, err := Apply(context.Background(), store, service.NewAdminService(store, hasher, nil), f, now)
	require.NoError(t, err)
	assert.Equal(t, Result{Restaurants: 1, Admins: 1, Products: 2, Customers: 1, Orders: 2}, res)

	restaurants, err := store.Restaurants().List(context.Background())
	require.NoError(t, err)
	require.Len(t, restaurants, 1)

	orders, err := store.Orders().List(context.Background(), repository.OrderListFilter{RestaurantID: restaurants[0].ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, orders, 2)
	for _, o := range orders {
		if o.ProductName == "Pizza" {
			assert.Equal(t, now.Add(-30*time.Minute).Unix(), o.CreatedAt)
			assert.Equal(t, "pix", o.PaymentMethod)
		}
	}

	admin, err := store.Admins().FindByEmail(context.Background(), "chef@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", admin.PasswordHash)
}

func TestDecodeRejectsBadReferences(t *testing.T) {
	cases := map[string]string{
		"unknown status":   strings.Replace(sample, "status: Pendente", "status: Cancelado", 1),
		"unknown product":  strings.Replace(sample, "product: Soda", "product: Burger", 1),
		"unknown customer": strings.Replace(sample, "customer: ANA@example.com", "customer: bob@example.com", 1),
		"bad price":        strings.Replace(sample, `price: "6.00"`, `price: "six"`, 1),
		"negative views":   strings.Replace(sample, "views: 300", "views: -1", 1),
		"unknown field":    sample + "\nextra: true\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}
