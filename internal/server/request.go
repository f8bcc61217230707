package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/matthieukhl/shopfront/internal/auth"
	"github.com/matthieukhl/shopfront/internal/catalog"
	"github.com/matthieukhl/shopfront/internal/models"
	"github.com/matthieukhl/shopfront/internal/orders"
	"github.com/shopspring/decimal"
)

// flexID accepts an id sent either as a JSON number or as a numeric string,
// since browser clients often echo ids back from localStorage.
type flexID int64

func (id *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*id = 0
			return nil
		}
		data = []byte(s)
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", data)
	}
	*id = flexID(n)
	return nil
}

// missingFieldsError is implemented by requests whose binding:"required"
// tags have a domain error to report instead of a generic bad body.
type missingFieldsError interface {
	missingFields() error
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (credentialsRequest) missingFields() error { return auth.ErrMissingCredentials }

type registerRequest struct {
	Username        string `json:"username" binding:"required"`
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	RegistrationKey string `json:"registration_key"`
}

func (registerRequest) missingFields() error { return auth.ErrMissingFields }

type productRequest struct {
	ID          flexID           `json:"id"`
	Name        string           `json:"name" binding:"required"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
	Description string           `json:"description"`
	Image       string           `json:"image"`
	Tags        []string         `json:"tags"`
}

func (productRequest) missingFields() error { return catalog.ErrMissingFields }

type cartRequest struct {
	ProductID flexID `json:"product_id"`
	Quantity  *int   `json:"quantity"`
}

type orderLine struct {
	ProductID flexID `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type createOrderRequest struct {
	Cart   []orderLine `json:"cart"`
	UserID flexID      `json:"user_id"`
}

func (r createOrderRequest) lines() []models.CartLine {
	if r.Cart == nil {
		return nil
	}
	lines := make([]models.CartLine, 0, len(r.Cart))
	for _, l := range r.Cart {
		lines = append(lines, models.CartLine{ProductID: int64(l.ProductID), Quantity: l.Quantity})
	}
	return lines
}

type orderStatusRequest struct {
	OrderID flexID `json:"order_id" binding:"required"`
	Status  string `json:"status" binding:"required"`
}

func (orderStatusRequest) missingFields() error { return orders.ErrMissingStatus }

type idRequest struct {
	ID      flexID `json:"id"`
	OrderID flexID `json:"order_id"`
}
