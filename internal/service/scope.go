package service

import "strconv"

// Scope is the identity every dashboard operation runs under. Orders and
// products outside RestaurantID are invisible to it.
type Scope struct {
	RestaurantID int64
	AdminID      int64
	Email        string
}

// Valid reports whether the scope names a restaurant.
func (s Scope) Valid() bool { return s.RestaurantID > 0 }

// Actor 用于审计与事件中的操作者字段。
func (s Scope) Actor() string {
	if s.Email != "" {
		return s.Email
	}
	if s.AdminID > 0 {
		return "admin#" + strconv.FormatInt(s.AdminID, 10)
	}
	return "system"
}
