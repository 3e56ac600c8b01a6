// 文件路径: internal/repository/interfaces.go
// 模块说明: 存储端口。业务层只依赖这些接口，具体实现可以是 SQLite、Postgres 或内存。
package repository

import "context"

// Store 暴露每个聚合根对应的仓储接口。
type Store interface {
	Restaurants() RestaurantRepository
	Orders() OrderRepository
	Products() ProductRepository
	Customers() CustomerRepository
	StatusEvents() StatusEventRepository
	Admins() AdminRepository
	Settings() SettingRepository
}

// RestaurantRepository 管理餐厅（租户）。
type RestaurantRepository interface {
	FindByID(ctx context.Context, id int64) (*Restaurant, error)
	List(ctx context.Context) ([]*Restaurant, error)
	Create(ctx context.Context, restaurant *Restaurant) (*Restaurant, error)
}

// OrderRepository 定义订单相关数据访问方法。
type OrderRepository interface {
	FindByID(ctx context.Context, id int64) (*Order, error)
	// ListLines joins orders to products for one restaurant, restricted to filter.Statuses.
	ListLines(ctx context.Context, filter OrderLineFilter) ([]OrderLine, error)
	List(ctx context.Context, filter OrderListFilter) ([]*OrderSummary, error)
	CountByStatus(ctx context.Context, restaurantID int64) ([]StatusCount, error)
	// UpdateStatus changes exactly one row; a missing row yields ErrNotFound.
	UpdateStatus(ctx context.Context, id int64, status string, updatedAt int64) error
	Create(ctx context.Context, order *Order) (*Order, error)
}

// ProductRepository 定义商品相关数据访问方法。
type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*Product, error)
	Create(ctx context.Context, product *Product) (*Product, error)
}

// CustomerRepository 定义顾客相关数据访问方法。
type CustomerRepository interface {
	FindByID(ctx context.Context, id int64) (*Customer, error)
	Create(ctx context.Context, customer *Customer) (*Customer, error)
}

// StatusEventRepository 保存订单状态变更历史。
type StatusEventRepository interface {
	Append(ctx context.Context, event *StatusEvent) error
	ListByOrder(ctx context.Context, orderID int64) ([]*StatusEvent, error)
	DeleteBefore(ctx context.Context, beforeUnix int64) (int64, error)
}

// AdminRepository 管理后台账号。
type AdminRepository interface {
	FindByID(ctx context.Context, id int64) (*Admin, error)
	FindByEmail(ctx context.Context, email string) (*Admin, error)
	List(ctx context.Context) ([]*Admin, error)
	Create(ctx context.Context, admin *Admin) (*Admin, error)
	TouchLogin(ctx context.Context, id int64, at int64) error
}

// SettingRepository 处理系统配置的存取。
type SettingRepository interface {
	Get(ctx context.Context, key string) (*Setting, error)
	Upsert(ctx context.Context, setting *Setting) error
}
