package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order represents a placed order
type Order struct {
	ID          int64           `json:"id" db:"id"`
	UserID      *int64          `json:"user_id" db:"user_id"`
	Username    string          `json:"username"`
	TotalAmount decimal.Decimal `json:"total_amount" db:"total_amount"`
	Status      string          `json:"status" db:"status"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	Items       []OrderItem     `json:"items"`
}

// OrderItem is a persisted order line. Price is the product price at the
// moment the order was placed.
type OrderItem struct {
	ID          int64           `json:"id" db:"id"`
	OrderID     int64           `json:"order_id" db:"order_id"`
	ProductID   *int64          `json:"product_id" db:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity" db:"quantity"`
	Price       decimal.Decimal `json:"price" db:"price"`
}

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
)

// OrderStatuses lists the valid statuses in lifecycle order.
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusShipped,
	OrderStatusDelivered,
}

// AnonymousUsername is reported for orders whose user no longer exists.
const AnonymousUsername = "anonymous"
