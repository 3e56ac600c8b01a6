// 文件路径: internal/repository/filters.go
// 模块说明: 列表查询使用的过滤条件。
package repository

// OrderLineFilter selects order lines for one restaurant. An empty Statuses
// slice matches every status.
type OrderLineFilter struct {
	RestaurantID int64
	Statuses     []string
}

// ProductFilter constrains product listings.
type ProductFilter struct {
	RestaurantID int64
	Limit        int  // 0 = no limit
	OrderByViews bool // views DESC, id ASC
}

// OrderListFilter constrains the recent-orders listing.
type OrderListFilter struct {
	RestaurantID int64
	Status       string // empty = all statuses
	Limit        int
	Offset       int
}
