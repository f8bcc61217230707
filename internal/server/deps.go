package server

import (
	"context"
	"io"

	"github.com/matthieukhl/shopfront/internal/auth"
	"github.com/matthieukhl/shopfront/internal/catalog"
	"github.com/matthieukhl/shopfront/internal/models"
	"github.com/matthieukhl/shopfront/internal/orders"
)

type Catalog interface {
	Search(ctx context.Context, term string, recommended bool) ([]models.Product, error)
	Create(ctx context.Context, in catalog.ProductInput) (models.Product, error)
	Update(ctx context.Context, in catalog.ProductInput) (models.Product, error)
	Delete(ctx context.Context, id int64) error
}

type Carts interface {
	Get(ctx context.Context, sessionID string) ([]models.CartLine, error)
	Add(ctx context.Context, sessionID string, productID int64, delta int) ([]models.CartLine, error)
	Remove(ctx context.Context, sessionID string, productID int64) ([]models.CartLine, error)
	Clear(ctx context.Context, sessionID string) error
}

type Orders interface {
	Create(ctx context.Context, userID int64, lines []models.CartLine) (orders.Placement, error)
	List(ctx context.Context) ([]models.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status string) error
	Advance(ctx context.Context, orderID int64) (string, error)
	Delete(ctx context.Context, orderID int64) error
}

type Accounts interface {
	Login(ctx context.Context, username, password string) (auth.Session, error)
	Register(ctx context.Context, username, email, password, key string) (int64, error)
	Resolve(ctx context.Context, token string) (int64, error)
	Logout(ctx context.Context, token string) error
}

type Images interface {
	Upload(ctx context.Context, filename, contentType string, r io.Reader, size int64) (string, error)
}
