package model

import (
	"slices"
	"time"
)

const (
	OrderPending   = "pending"
	OrderPaid      = "paid"
	OrderShipped   = "shipped"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

var orderStatuses = []string{OrderPending, OrderPaid, OrderShipped, OrderDelivered, OrderCancelled}

var orderTransitions = map[string][]string{
	OrderPending: {OrderPaid, OrderCancelled},
	OrderPaid:    {OrderShipped, OrderCancelled},
	OrderShipped: {OrderDelivered},
}

type Order struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	TotalPrice int64     `gorm:"not null" json:"total_price"`
	Status     string    `gorm:"not null" json:"status"`
	CreatedAt  time.Time `json:"created_at"`

	User  User        `gorm:"foreignKey:UserID" json:"-"`
	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// OrderItem keeps the product price at the time the order was placed
type OrderItem struct {
	ID        uint  `gorm:"primaryKey;autoIncrement" json:"-"`
	OrderID   uint  `gorm:"index;not null" json:"-"`
	ProductID uint  `gorm:"not null" json:"product_id"`
	Quantity  int   `gorm:"not null" json:"quantity"`
	Price     int64 `gorm:"not null" json:"price"`

	Product Product `gorm:"foreignKey:ProductID" json:"-"`
}

// ValidOrderStatus reports whether s is a known order status
func ValidOrderStatus(s string) bool {
	return slices.Contains(orderStatuses, s)
}

// CanTransition reports whether an order in status from may move to status to.
// Staying in the same status is always allowed.
func CanTransition(from, to string) bool {
	if from == to {
		return ValidOrderStatus(to)
	}
	return slices.Contains(orderTransitions[from], to)
}
