package cart

import (
	"context"
	"strings"

	"github.com/matthieukhl/shopfront/internal/apperr"
	"github.com/matthieukhl/shopfront/internal/models"
)

var (
	ErrNoSession      = apperr.Validation("missing session")
	ErrInvalidProduct = apperr.Validation("missing product id")
)

// Service applies cart mutations to the cart of one session at a time.
// Updates are read-modify-write without locking; concurrent requests on the
// same session may lose updates.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Get(ctx context.Context, sessionID string) ([]models.CartLine, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrNoSession
	}
	lines, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, apperr.Internal("failed to load cart", err)
	}
	return lines, nil
}

func (s *Service) Add(ctx context.Context, sessionID string, productID int64, delta int) ([]models.CartLine, error) {
	if productID <= 0 {
		return nil, ErrInvalidProduct
	}
	lines, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	lines = Add(lines, productID, delta)
	if err := s.store.Save(ctx, sessionID, lines); err != nil {
		return nil, apperr.Internal("failed to save cart", err)
	}
	return lines, nil
}

func (s *Service) Remove(ctx context.Context, sessionID string, productID int64) ([]models.CartLine, error) {
	if productID <= 0 {
		return nil, ErrInvalidProduct
	}
	lines, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	next := Remove(lines, productID)
	if len(next) == len(lines) {
		return lines, nil
	}
	if err := s.store.Save(ctx, sessionID, next); err != nil {
		return nil, apperr.Internal("failed to save cart", err)
	}
	return next, nil
}

func (s *Service) Clear(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrNoSession
	}
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return apperr.Internal("failed to clear cart", err)
	}
	return nil
}
