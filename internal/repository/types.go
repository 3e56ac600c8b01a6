// 文件路径: internal/repository/types.go
// 模块说明: 仓储层共享的实体定义，SQLite / Postgres / 内存实现都返回这些结构。
package repository

import "github.com/shopspring/decimal"

// Restaurant 是一个租户；所有订单与商品都归属于某个餐厅。
type Restaurant struct {
	ID        int64
	Name      string
	CreatedAt int64
}

// Order mirrors one row of the orders table.
type Order struct {
	ID            int64
	RestaurantID  int64
	ProductID     int64
	CustomerID    int64
	Quantity      int64
	Status        string
	PaymentMethod string
	CreatedAt     int64
	UpdatedAt     int64
}

// Product 商品信息，Views 为累计浏览次数。
type Product struct {
	ID           int64
	RestaurantID int64
	Name         string
	Price        decimal.Decimal
	Description  string
	Category     string
	Views        int64
	CreatedAt    int64
}

// Customer 下单的顾客。
type Customer struct {
	ID    int64
	Name  string
	Email string
	Phone string
}

// OrderLine is an order joined to its product, the input of the quantity ranking.
type OrderLine struct {
	OrderID     int64
	ProductID   int64
	ProductName string
	Quantity    int64
	Status      string
}

// OrderSummary is an order joined to product and customer names for listings.
// Names are empty when the joined row no longer exists.
type OrderSummary struct {
	Order
	ProductName  string
	CustomerName string
}

// StatusCount 按状态统计的订单数量。
type StatusCount struct {
	Status string
	Count  int64
}

// StatusEvent records one applied status transition.
type StatusEvent struct {
	ID           string
	OrderID      int64
	RestaurantID int64
	Action       string
	FromStatus   string
	ToStatus     string
	Actor        string
	CreatedAt    int64
}

// Admin 后台账号，只能看到自己餐厅的数据。
type Admin struct {
	ID           int64
	RestaurantID int64
	Email        string
	Name         string
	PasswordHash string
	LastLoginAt  int64
	CreatedAt    int64
}

// Setting 键值配置项（例如 JWT 签名密钥）。
type Setting struct {
	Key       string
	Value     string
	UpdatedAt int64
}
