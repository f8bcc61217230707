package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/matthieukhl/shopfront/internal/apperr"
	"github.com/matthieukhl/shopfront/internal/cart"
	"github.com/matthieukhl/shopfront/internal/models"
)

var (
	ErrUnauthenticated = apperr.Auth("user is not logged in")
	ErrInvalidUser     = apperr.Auth("invalid user id")
	ErrEmptyCart       = apperr.Validation("cart is empty")
	ErrInvalidQuantity = apperr.Validation(fmt.Sprintf("quantities must be between 1 and %d", cart.MaxQuantity))
	ErrMissingOrderID  = apperr.Validation("order id is required")
	ErrMissingStatus   = apperr.Validation("order id and status are required")
	ErrInvalidStatus   = apperr.Validation("invalid status")
	ErrFinalStatus     = apperr.Validation("order is already delivered")
	ErrNotFound        = apperr.NotFound("order not found")
)

// OrderStore is the persistence the order service needs.
type OrderStore interface {
	UserExists(ctx context.Context, userID int64) (bool, error)
	Create(ctx context.Context, userID int64, lines []models.CartLine) (Placement, error)
	List(ctx context.Context) ([]models.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status string) error
	Advance(ctx context.Context, orderID int64) (string, error)
	Delete(ctx context.Context, orderID int64) error
}

type Service struct {
	store OrderStore
	log   *slog.Logger
}

func NewService(store OrderStore, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, log: log}
}

// Create places an order for userID from lines. The total is always
// computed from current catalog prices; lines whose product no longer
// exists are left out of the order and reported in Placement.Skipped.
func (s *Service) Create(ctx context.Context, userID int64, lines []models.CartLine) (Placement, error) {
	if userID <= 0 {
		return Placement{}, ErrUnauthenticated
	}

	exists, err := s.store.UserExists(ctx, userID)
	if err != nil {
		return Placement{}, apperr.Internal("failed to verify user", err)
	}
	if !exists {
		return Placement{}, ErrInvalidUser
	}

	if len(lines) == 0 {
		return Placement{}, ErrEmptyCart
	}
	for _, l := range lines {
		if l.ProductID <= 0 || l.Quantity < 1 || l.Quantity > cart.MaxQuantity {
			return Placement{}, ErrInvalidQuantity
		}
	}
	merged := cart.Normalize(lines)
	for _, l := range merged {
		if l.Quantity > cart.MaxQuantity {
			return Placement{}, ErrInvalidQuantity
		}
	}

	placed, err := s.store.Create(ctx, userID, merged)
	if err != nil {
		return Placement{}, apperr.Internal("failed to create order", err)
	}

	if len(placed.Skipped) > 0 {
		s.log.Warn("checkout skipped vanished products",
			slog.Int64("order_id", placed.OrderID),
			slog.Int64("user_id", userID),
			slog.Any("product_ids", placed.Skipped))
	}
	s.log.Info("order created",
		slog.Int64("order_id", placed.OrderID),
		slog.Int64("user_id", userID),
		slog.String("total", placed.Total.StringFixed(2)),
		slog.Int("items", len(placed.Items)))

	return placed, nil
}

func (s *Service) List(ctx context.Context) ([]models.Order, error) {
	orders, err := s.store.List(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to load orders", err)
	}
	return orders, nil
}

// UpdateStatus sets any valid status regardless of the current one, so that
// administrators can correct mistakes.
func (s *Service) UpdateStatus(ctx context.Context, orderID int64, status string) error {
	if orderID <= 0 || status == "" {
		return ErrMissingStatus
	}
	if !ValidStatus(status) {
		return ErrInvalidStatus
	}
	if err := s.store.UpdateStatus(ctx, orderID, status); err != nil {
		return storeErr("failed to update order status", err)
	}
	return nil
}

// Advance moves an order one step along its lifecycle.
func (s *Service) Advance(ctx context.Context, orderID int64) (string, error) {
	if orderID <= 0 {
		return "", ErrMissingOrderID
	}
	next, err := s.store.Advance(ctx, orderID)
	if err != nil {
		return "", storeErr("failed to advance order", err)
	}
	return next, nil
}

func (s *Service) Delete(ctx context.Context, orderID int64) error {
	if orderID <= 0 {
		return ErrMissingOrderID
	}
	if err := s.store.Delete(ctx, orderID); err != nil {
		return storeErr("failed to delete order", err)
	}
	return nil
}

func storeErr(msg string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperr.Internal(msg, err)
}
