package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/matthieukhl/shopfront/internal/apperr"
	"github.com/matthieukhl/shopfront/internal/models"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound      = apperr.NotFound("product not found")
	ErrMissingID     = apperr.Validation("product id is required")
	ErrMissingFields = apperr.Validation("product name and price are required")
	ErrNegativePrice = apperr.Validation("price must not be negative")
	ErrInvalidTags   = apperr.Validation("tags must not contain commas")
	ErrFieldTooLong  = apperr.Validation("name, image and tags are limited to 255 characters, description to 65535 bytes")
)

// Column limits of the products table.
const (
	maxTextChars       = 255
	maxDescriptionSize = 65535
)

// ProductStore is the persistence the catalog needs.
type ProductStore interface {
	List(ctx context.Context, term string) ([]models.Product, error)
	Get(ctx context.Context, id int64) (models.Product, error)
	Create(ctx context.Context, p models.Product) (int64, error)
	Update(ctx context.Context, p models.Product) error
	Delete(ctx context.Context, id int64) error
}

// ProductInput carries the writable product fields. Nil means "not supplied".
type ProductInput struct {
	ID          int64
	Name        string
	Price       *decimal.Decimal
	Description string
	Image       string
	Tags        []string
}

type Service struct {
	store ProductStore
}

func NewService(store ProductStore) *Service {
	return &Service{store: store}
}

// Search lists products matching term. With recommended set the result is
// ordered by units sold, highest first, keeping catalog order among ties.
func (s *Service) Search(ctx context.Context, term string, recommended bool) ([]models.Product, error) {
	term = strings.TrimSpace(term)

	products, err := s.store.List(ctx, term)
	if err != nil {
		return nil, apperr.Internal("failed to load products", err)
	}

	if term != "" {
		filtered := products[:0]
		for _, p := range products {
			if matches(p, term) {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}

	if recommended {
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Sales > products[j].Sales
		})
	}
	return products, nil
}

func (s *Service) Get(ctx context.Context, id int64) (models.Product, error) {
	if id <= 0 {
		return models.Product{}, ErrMissingID
	}
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return models.Product{}, wrapStoreErr("failed to load product", err)
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, in ProductInput) (models.Product, error) {
	p, err := validate(in)
	if err != nil {
		return models.Product{}, err
	}

	id, err := s.store.Create(ctx, p)
	if err != nil {
		return models.Product{}, apperr.Internal("failed to create product", err)
	}
	return s.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, in ProductInput) (models.Product, error) {
	if in.ID <= 0 {
		return models.Product{}, apperr.Validation("product id, name and price are required")
	}
	p, err := validate(in)
	if err != nil {
		return models.Product{}, err
	}
	p.ID = in.ID

	if err := s.store.Update(ctx, p); err != nil {
		return models.Product{}, wrapStoreErr("failed to update product", err)
	}
	return s.Get(ctx, in.ID)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrMissingID
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return wrapStoreErr("failed to delete product", err)
	}
	return nil
}

func validate(in ProductInput) (models.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Price == nil {
		return models.Product{}, ErrMissingFields
	}
	if in.Price.IsNegative() {
		return models.Product{}, ErrNegativePrice
	}
	tags, ok := cleanTags(in.Tags)
	if !ok {
		return models.Product{}, ErrInvalidTags
	}
	image := strings.TrimSpace(in.Image)
	if tooLong(name) || tooLong(image) || tooLong(encodeTags(tags)) || len(in.Description) > maxDescriptionSize {
		return models.Product{}, ErrFieldTooLong
	}

	return models.Product{
		Name:        name,
		Description: in.Description,
		Price:       in.Price.Round(2),
		Image:       image,
		Tags:        tags,
	}, nil
}

func tooLong(s string) bool {
	return utf8.RuneCountInString(s) > maxTextChars
}

func wrapStoreErr(msg string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	return apperr.Internal(msg, err)
}
