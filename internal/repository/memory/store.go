// 文件路径: internal/repository/memory/store.go
// 模块说明: 纯内存实现的 repository.Store，供测试与演示使用；所有方法并发安全。
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/orderdesk/orderdesk/internal/repository"
)

// Store keeps every aggregate in maps guarded by one RWMutex.
type Store struct {
	mu          sync.RWMutex
	nextID      map[string]int64
	restaurants map[int64]repository.Restaurant
	orders      map[int64]repository.Order
	products    map[int64]repository.Product
	customers   map[int64]repository.Customer
	events      []repository.StatusEvent
	admins      map[int64]repository.Admin
	settings    map[string]repository.Setting

	// FailUpdates, when set, is returned by every Orders().UpdateStatus call.
	FailUpdates error
}

var _ repository.Store = (*Store)(nil)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		nextID:      make(map[string]int64),
		restaurants: make(map[int64]repository.Restaurant),
		orders:      make(map[int64]repository.Order),
		products:    make(map[int64]repository.Product),
		customers:   make(map[int64]repository.Customer),
		admins:      make(map[int64]repository.Admin),
		settings:    make(map[string]repository.Setting),
	}
}

func (s *Store) Restaurants() repository.RestaurantRepository {
	return restaurantRepo{s}
}

func (s *Store) Orders() repository.OrderRepository {
	return orderRepo{s}
}

func (s *Store) Products() repository.ProductRepository {
	return productRepo{s}
}

func (s *Store) Customers() repository.CustomerRepository {
	return customerRepo{s}
}

func (s *Store) StatusEvents() repository.StatusEventRepository {
	return statusEventRepo{s}
}

func (s *Store) Admins() repository.AdminRepository {
	return adminRepo{s}
}

func (s *Store) Settings() repository.SettingRepository {
	return settingRepo{s}
}

// SetFailUpdates makes subsequent status updates fail with err (nil restores).
func (s *Store) SetFailUpdates(err error) {
	s.mu.Lock()
	s.FailUpdates = err
	s.mu.Unlock()
}

// allocate must be called with s.mu held.
func (s *Store) allocate(kind string, explicit int64) int64 {
	if explicit > 0 {
		if explicit > s.nextID[kind] {
			s.nextID[kind] = explicit
		}
		return explicit
	}
	s.nextID[kind]++
	return s.nextID[kind]
}

type restaurantRepo struct{ s *Store }

func (r restaurantRepo) FindByID(_ context.Context, id int64) (*repository.Restaurant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rest, ok := r.s.restaurants[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rest, nil
}

func (r restaurantRepo) List(_ context.Context) ([]*repository.Restaurant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]*repository.Restaurant, 0, len(r.s.restaurants))
	for _, rest := range r.s.restaurants {
		rest := rest
		list = append(list, &rest)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r restaurantRepo) Create(_ context.Context, restaurant *repository.Restaurant) (*repository.Restaurant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.restaurants[restaurant.ID]; restaurant.ID > 0 && exists {
		return nil, repository.ErrConflict
	}
	restaurant.ID = r.s.allocate("restaurant", restaurant.ID)
	r.s.restaurants[restaurant.ID] = *restaurant
	return restaurant, nil
}

type orderRepo struct{ s *Store }

func (r orderRepo) FindByID(_ context.Context, id int64) (*repository.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &o, nil
}

func (r orderRepo) sortedOrders() []repository.Order {
	list := make([]repository.Order, 0, len(r.s.orders))
	for _, o := range r.s.orders {
		list = append(list, o)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func (r orderRepo) ListLines(_ context.Context, filter repository.OrderLineFilter) ([]repository.OrderLine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	allowed := make(map[string]struct{}, len(filter.Statuses))
	for _, st := range filter.Statuses {
		allowed[st] = struct{}{}
	}
	lines := make([]repository.OrderLine, 0)
	for _, o := range r.sortedOrders() {
		if o.RestaurantID != filter.RestaurantID {
			continue
		}
		if len(allowed) > 0 {
			if _, ok := allowed[o.Status]; !ok {
				continue
			}
		}
		p, ok := r.s.products[o.ProductID]
		if !ok {
			// inner join
			continue
		}
		lines = append(lines, repository.OrderLine{
			OrderID:     o.ID,
			ProductID:   o.ProductID,
			ProductName: p.Name,
			Quantity:    o.Quantity,
			Status:      o.Status,
		})
	}
	return lines, nil
}

func (r orderRepo) List(_ context.Context, filter repository.OrderListFilter) ([]*repository.OrderSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var list []*repository.OrderSummary
	for _, o := range r.sortedOrders() {
		if o.RestaurantID != filter.RestaurantID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		list = append(list, &repository.OrderSummary{
			Order:        o,
			ProductName:  r.s.products[o.ProductID].Name,
			CustomerName: r.s.customers[o.CustomerID].Name,
		})
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].CreatedAt != list[j].CreatedAt {
			return list[i].CreatedAt > list[j].CreatedAt
		}
		return list[i].ID > list[j].ID
	})
	if filter.Limit > 0 {
		start := filter.Offset
		if start > len(list) {
			start = len(list)
		}
		end := start + filter.Limit
		if end > len(list) {
			end = len(list)
		}
		list = list[start:end]
	}
	return list, nil
}

func (r orderRepo) CountByStatus(_ context.Context, restaurantID int64) ([]repository.StatusCount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	counts := make(map[string]int64)
	for _, o := range r.s.orders {
		if o.RestaurantID == restaurantID {
			counts[o.Status]++
		}
	}
	out := make([]repository.StatusCount, 0, len(counts))
	for status, n := range counts {
		out = append(out, repository.StatusCount{Status: status, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out, nil
}

func (r orderRepo) UpdateStatus(_ context.Context, id int64, status string, updatedAt int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailUpdates != nil {
		return r.s.FailUpdates
	}
	o, ok := r.s.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = updatedAt
	r.s.orders[id] = o
	return nil
}

func (r orderRepo) Create(_ context.Context, order *repository.Order) (*repository.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	order.ID = r.s.allocate("order", order.ID)
	r.s.orders[order.ID] = *order
	return order, nil
}

type productRepo struct{ s *Store }

func (r productRepo) FindByID(_ context.Context, id int64) (*repository.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r productRepo) List(_ context.Context, filter repository.ProductFilter) ([]*repository.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*repository.Product
	for _, p := range r.s.products {
		if p.RestaurantID != filter.RestaurantID {
			continue
		}
		p := p
		list = append(list, &p)
	}
	sort.Slice(list, func(i, j int) bool {
		if filter.OrderByViews && list[i].Views != list[j].Views {
			return list[i].Views > list[j].Views
		}
		return list[i].ID < list[j].ID
	})
	if filter.Limit > 0 && len(list) > filter.Limit {
		list = list[:filter.Limit]
	}
	return list, nil
}

func (r productRepo) Create(_ context.Context, product *repository.Product) (*repository.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	product.ID = r.s.allocate("product", product.ID)
	r.s.products[product.ID] = *product
	return product, nil
}

type customerRepo struct{ s *Store }

func (r customerRepo) FindByID(_ context.Context, id int64) (*repository.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.customers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r customerRepo) Create(_ context.Context, customer *repository.Customer) (*repository.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	customer.ID = r.s.allocate("customer", customer.ID)
	r.s.customers[customer.ID] = *customer
	return customer, nil
}

type statusEventRepo struct{ s *Store }

func (r statusEventRepo) Append(_ context.Context, event *repository.StatusEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.events = append(r.s.events, *event)
	return nil
}

func (r statusEventRepo) ListByOrder(_ context.Context, orderID int64) ([]*repository.StatusEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*repository.StatusEvent
	for _, e := range r.s.events {
		if e.OrderID == orderID {
			e := e
			out = append(out, &e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out, nil
}

func (r statusEventRepo) DeleteBefore(_ context.Context, beforeUnix int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.events[:0]
	var removed int64
	for _, e := range r.s.events {
		if e.CreatedAt < beforeUnix {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	r.s.events = kept
	return removed, nil
}

type adminRepo struct{ s *Store }

func (r adminRepo) FindByID(_ context.Context, id int64) (*repository.Admin, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.admins[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r adminRepo) FindByEmail(_ context.Context, email string) (*repository.Admin, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.admins {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r adminRepo) List(_ context.Context) ([]*repository.Admin, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]*repository.Admin, 0, len(r.s.admins))
	for _, a := range r.s.admins {
		a := a
		list = append(list, &a)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r adminRepo) Create(_ context.Context, admin *repository.Admin) (*repository.Admin, error) {
	admin.Email = strings.ToLower(strings.TrimSpace(admin.Email))
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.admins {
		if a.Email == admin.Email {
			return nil, repository.ErrConflict
		}
	}
	admin.ID = r.s.allocate("admin", 0)
	r.s.admins[admin.ID] = *admin
	return admin, nil
}

func (r adminRepo) TouchLogin(_ context.Context, id int64, at int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.admins[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.LastLoginAt = at
	r.s.admins[id] = a
	return nil
}

type settingRepo struct{ s *Store }

func (r settingRepo) Get(_ context.Context, key string) (*repository.Setting, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.settings[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &st, nil
}

func (r settingRepo) Upsert(_ context.Context, setting *repository.Setting) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.settings[setting.Key] = *setting
	return nil
}
