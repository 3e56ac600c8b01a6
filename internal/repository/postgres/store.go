// 文件路径: internal/repository/postgres/store.go
// 模块说明: Postgres 版本的存储实现，基于 pgx 连接池。
package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orderdesk/orderdesk/internal/repository"
)

// Store wires Postgres-backed repository implementations.
type Store struct {
	pool         *pgxpool.Pool
	restaurants  repository.RestaurantRepository
	orders       repository.OrderRepository
	products     repository.ProductRepository
	customers    repository.CustomerRepository
	statusEvents repository.StatusEventRepository
	admins       repository.AdminRepository
	settings     repository.SettingRepository
}

var _ repository.Store = (*Store)(nil)

// NewStore constructs a Postgres-backed repository store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:         pool,
		restaurants:  &restaurantRepo{pool: pool},
		orders:       &orderRepo{pool: pool},
		products:     &productRepo{pool: pool},
		customers:    &customerRepo{pool: pool},
		statusEvents: &statusEventRepo{pool: pool},
		admins:       &adminRepo{pool: pool},
		settings:     &settingRepo{pool: pool},
	}
}

// Pool exposes the underlying pool.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

func (s *Store) Restaurants() repository.RestaurantRepository {
	return s.restaurants
}

func (s *Store) Orders() repository.OrderRepository {
	return s.orders
}

func (s *Store) Products() repository.ProductRepository {
	return s.products
}

func (s *Store) Customers() repository.CustomerRepository {
	return s.customers
}

func (s *Store) StatusEvents() repository.StatusEventRepository {
	return s.statusEvents
}

func (s *Store) Admins() repository.AdminRepository {
	return s.admins
}

func (s *Store) Settings() repository.SettingRepository {
	return s.settings
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}

func conflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return repository.ErrConflict
	}
	return err
}
