package database

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
	    id BIGINT PRIMARY KEY AUTO_INCREMENT,
	    username VARCHAR(50) NOT NULL,
	    email VARCHAR(100) NOT NULL,
	    password VARCHAR(255) NOT NULL,
	    registration_key VARCHAR(255),
	    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	    UNIQUE KEY uk_username (username),
	    UNIQUE KEY uk_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS products (
	    id BIGINT PRIMARY KEY AUTO_INCREMENT,
	    name VARCHAR(255) NOT NULL,
	    description TEXT,
	    price DECIMAL(10,2) NOT NULL,
	    image VARCHAR(255),
	    tags VARCHAR(255),
	    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	    CHECK (price >= 0)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS orders (
	    id BIGINT PRIMARY KEY AUTO_INCREMENT,
	    user_id BIGINT NULL,
	    total_amount DECIMAL(10,2) NOT NULL,
	    status ENUM('pending', 'paid', 'shipped', 'delivered') NOT NULL DEFAULT 'pending',
	    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE SET NULL,
	    INDEX idx_user_id (user_id),
	    INDEX idx_created_at (created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS order_items (
	    id BIGINT PRIMARY KEY AUTO_INCREMENT,
	    order_id BIGINT NOT NULL,
	    product_id BIGINT NULL,
	    quantity INT NOT NULL,
	    price DECIMAL(10,2) NOT NULL,
	    FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE,
	    FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE SET NULL,
	    INDEX idx_order_id (order_id),
	    INDEX idx_product_id (product_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Tables lists the application tables in creation order.
var Tables = []string{"users", "products", "orders", "order_items"}

// SetupSchema creates the application tables
func (db *DB) SetupSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// DropSchema removes all application tables
func (db *DB) DropSchema(ctx context.Context) error {
	for i := len(Tables) - 1; i >= 0; i-- {
		if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+Tables[i]); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", Tables[i], err)
		}
	}
	return nil
}

// EnsureTagsColumn adds products.tags to tables created before tags existed.
// It reports whether the column had to be added.
func (db *DB) EnsureTagsColumn(ctx context.Context) (bool, error) {
	return db.ensureColumn(ctx, "products", "tags", "VARCHAR(255)")
}

// EnsureRegistrationKeyColumn adds users.registration_key to tables created
// before registration was gated by a key.
func (db *DB) EnsureRegistrationKeyColumn(ctx context.Context) (bool, error) {
	return db.ensureColumn(ctx, "users", "registration_key", "VARCHAR(255)")
}

func (db *DB) ensureColumn(ctx context.Context, table, column, ddl string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND COLUMN_NAME = ?`,
		table, column,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to inspect %s table: %w", table, err)
	}
	if count > 0 {
		return false, nil
	}

	stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, ddl)
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return false, fmt.Errorf("failed to add %s.%s column: %w", table, column, err)
	}
	return true, nil
}

// ColumnInfo is one row of a table description.
type ColumnInfo struct {
	Field   string
	Type    string
	Null    string
	Key     string
	Default string
	Extra   string
}

// DescribeTable returns the column layout of table.
func (db *DB) DescribeTable(ctx context.Context, table string) ([]ColumnInfo, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT COLUMN_NAME, COLUMN_TYPE, IS_NULLABLE, COLUMN_KEY,
		       COALESCE(COLUMN_DEFAULT, ''), EXTRA
		FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to describe %s: %w", table, err)
	}
	defer rows.Close()

	var cols []ColumnInfo
	for rows.Next() {
		var c ColumnInfo
		if err := rows.Scan(&c.Field, &c.Type, &c.Null, &c.Key, &c.Default, &c.Extra); err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}
