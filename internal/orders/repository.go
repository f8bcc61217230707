package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/matthieukhl/shopfront/internal/database"
	"github.com/matthieukhl/shopfront/internal/models"
	"github.com/shopspring/decimal"
)

// Placement is the outcome of a committed checkout.
type Placement struct {
	OrderID int64
	Priced
}

// Repository is the MySQL-backed order store.
type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) UserExists(ctx context.Context, userID int64) (bool, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM users WHERE id = ?`, userID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up user: %w", err)
	}
	return true, nil
}

// Create prices lines against current product prices and writes the order
// and its items in one transaction. Nothing is written if any step fails.
func (r *Repository) Create(ctx context.Context, userID int64, lines []models.CartLine) (Placement, error) {
	var placed Placement

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		prices, err := currentPrices(ctx, tx, lines)
		if err != nil {
			return err
		}
		placed.Priced = PriceLines(lines, prices)

		res, err := tx.ExecContext(ctx, `
			INSERT INTO orders (user_id, total_amount, status)
			VALUES (?, ?, ?)`,
			userID, placed.Total, models.OrderStatusPending)
		if err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		placed.OrderID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read order id: %w", err)
		}

		for i := range placed.Items {
			item := &placed.Items[i]
			item.OrderID = placed.OrderID
			res, err := tx.ExecContext(ctx, `
				INSERT INTO order_items (order_id, product_id, quantity, price)
				VALUES (?, ?, ?, ?)`,
				placed.OrderID, *item.ProductID, item.Quantity, item.Price)
			if err != nil {
				return fmt.Errorf("failed to insert item %d: %w", i, err)
			}
			if item.ID, err = res.LastInsertId(); err != nil {
				return fmt.Errorf("failed to read item id: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return Placement{}, err
	}
	return placed, nil
}

func currentPrices(ctx context.Context, tx *sql.Tx, lines []models.CartLine) (map[int64]decimal.Decimal, error) {
	prices := make(map[int64]decimal.Decimal, len(lines))
	for _, l := range lines {
		if _, seen := prices[l.ProductID]; seen {
			continue
		}
		var price decimal.Decimal
		err := tx.QueryRowContext(ctx, `SELECT price FROM products WHERE id = ?`, l.ProductID).Scan(&price)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to look up price of product %d: %w", l.ProductID, err)
		}
		prices[l.ProductID] = price
	}
	return prices, nil
}

// List returns every order, newest first, with its items.
func (r *Repository) List(ctx context.Context) ([]models.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.id, o.user_id, COALESCE(u.username, ?), o.total_amount, o.status, o.created_at
		FROM orders o
		LEFT JOIN users u ON o.user_id = u.id
		ORDER BY o.created_at DESC, o.id DESC`, models.AnonymousUsername)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	index := map[int64]int{}
	for rows.Next() {
		var (
			o      models.Order
			userID sql.NullInt64
		)
		if err := rows.Scan(&o.ID, &userID, &o.Username, &o.TotalAmount, &o.Status, &o.CreatedAt); err != nil {
			return nil, err
		}
		if userID.Valid {
			o.UserID = &userID.Int64
		}
		o.Items = []models.OrderItem{}
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	itemRows, err := r.db.QueryContext(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, COALESCE(p.name, ''), oi.quantity, oi.price
		FROM order_items oi
		LEFT JOIN products p ON oi.product_id = p.id
		ORDER BY oi.order_id, oi.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var (
			it        models.OrderItem
			productID sql.NullInt64
		)
		if err := itemRows.Scan(&it.ID, &it.OrderID, &productID, &it.ProductName, &it.Quantity, &it.Price); err != nil {
			return nil, err
		}
		if productID.Valid {
			it.ProductID = &productID.Int64
		}
		if i, ok := index[it.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read order items: %w", err)
	}
	return orders, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, orderID int64, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, status, orderID)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Advance moves the order one step forward under a row lock and returns the
// new status.
func (r *Repository) Advance(ctx context.Context, orderID int64) (string, error) {
	var next string
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var current string
		err := tx.QueryRowContext(ctx, `SELECT status FROM orders WHERE id = ? FOR UPDATE`, orderID).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read order status: %w", err)
		}

		var ok bool
		if next, ok = NextStatus(current); !ok {
			return ErrFinalStatus
		}
		if _, err := tx.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, next, orderID); err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return next, nil
}

// Delete removes the order items and then the order in one transaction.
func (r *Repository) Delete(ctx context.Context, orderID int64) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, orderID); err != nil {
			return fmt.Errorf("failed to delete order items: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, orderID)
		if err != nil {
			return fmt.Errorf("failed to delete order: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}
