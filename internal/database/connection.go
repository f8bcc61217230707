package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/matthieukhl/shopfront/internal/config"
)

type DB struct {
	*sql.DB
}

// NewConnection creates a new database connection using the provided config
func NewConnection(cfg *config.DBConfig) (*DB, error) {
	dsn, err := normalizeDSN(cfg.DSN)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db}, nil
}

// normalizeDSN forces the driver options the repositories rely on.
// ClientFoundRows makes UPDATE report matched rows, so an update that
// leaves a row unchanged is not mistaken for a missing row.
func normalizeDSN(raw string) (string, error) {
	c, err := mysql.ParseDSN(raw)
	if err != nil {
		return "", fmt.Errorf("invalid database dsn: %w", err)
	}
	c.ParseTime = true
	c.ClientFoundRows = true
	return c.FormatDSN(), nil
}

// HealthCheck performs a simple health check on the database
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.PingContext(ctx)
}
