package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog entry. Sales is derived from order_items at
// read time and never stored.
type Product struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Image       string          `json:"image" db:"image"`
	Tags        []string        `json:"tags" db:"tags"`
	Sales       int64           `json:"sales"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}
