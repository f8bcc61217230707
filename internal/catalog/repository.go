package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/matthieukhl/shopfront/internal/database"
	"github.com/matthieukhl/shopfront/internal/models"
)

// Repository is the MySQL-backed product store.
type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

const productColumns = `
	p.id, p.name, COALESCE(p.description, ''), p.price,
	COALESCE(p.image, ''), COALESCE(p.tags, ''), p.created_at,
	COALESCE((SELECT SUM(oi.quantity) FROM order_items oi WHERE oi.product_id = p.id), 0) AS sales`

// List returns products whose name, description or tags contain term
// (all products for an empty term), in id order.
func (r *Repository) List(ctx context.Context, term string) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p`
	var args []any
	if term != "" {
		pattern := likePattern(term)
		query += `
		WHERE LOWER(p.name) LIKE ?
		   OR LOWER(COALESCE(p.description, '')) LIKE ?
		   OR LOWER(COALESCE(p.tags, '')) LIKE ?`
		args = append(args, pattern, pattern, pattern)
	}
	query += ` ORDER BY p.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	return products, nil
}

// Get returns a single product, ErrNotFound if it does not exist.
func (r *Repository) Get(ctx context.Context, id int64) (models.Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products p WHERE p.id = ?`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, ErrNotFound
	}
	return p, err
}

func (r *Repository) Create(ctx context.Context, p models.Product) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO products (name, description, price, image, tags)
		VALUES (?, ?, ?, ?, ?)`,
		p.Name, p.Description, p.Price, p.Image, encodeTags(p.Tags))
	if err != nil {
		return 0, fmt.Errorf("failed to insert product: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read product id: %w", err)
	}
	return id, nil
}

func (r *Repository) Update(ctx context.Context, p models.Product) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products SET name = ?, description = ?, price = ?, image = ?, tags = ?
		WHERE id = ?`,
		p.Name, p.Description, p.Price, p.Image, encodeTags(p.Tags), p.ID)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return requireRow(res)
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (models.Product, error) {
	var (
		p    models.Product
		tags string
	)
	if err := s.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Image, &tags, &p.CreatedAt, &p.Sales); err != nil {
		return models.Product{}, err
	}
	p.Tags = decodeTags(tags)
	return p, nil
}
