// 文件路径: internal/repository/sqlite/store.go
// 模块说明: SQLite 版本的存储实现，把各个仓储组装成 repository.Store。
package sqlite

import (
	"database/sql"

	"github.com/orderdesk/orderdesk/internal/repository"
)

// Store wires SQLite-backed repository implementations.
type Store struct {
	db           *sql.DB
	restaurants  repository.RestaurantRepository
	orders       repository.OrderRepository
	products     repository.ProductRepository
	customers    repository.CustomerRepository
	statusEvents repository.StatusEventRepository
	admins       repository.AdminRepository
	settings     repository.SettingRepository
}

var _ repository.Store = (*Store)(nil)

// NewStore constructs a SQLite-backed repository store.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:           db,
		restaurants:  &restaurantRepo{db: db},
		orders:       &orderRepo{db: db},
		products:     &productRepo{db: db},
		customers:    &customerRepo{db: db},
		statusEvents: &statusEventRepo{db: db},
		admins:       &adminRepo{db: db},
		settings:     &settingRepo{db: db},
	}
}

// DB exposes the underlying handle for maintenance commands (backup, stats).
func (s *Store) DB() *sql.DB { return s.db }

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
