package models

// CartLine is one product/quantity pair in a session cart.
type CartLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}
