package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/matthieukhl/shopfront/internal/database"
	"github.com/matthieukhl/shopfront/internal/models"
)

var (
	errUserNotFound  = errors.New("user not found")
	errDuplicateUser = errors.New("duplicate user")
)

const mysqlDuplicateEntry = 1062

// Repository is the MySQL-backed user store.
type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	var (
		u   models.User
		key sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, username, email, password, registration_key, created_at
		FROM users WHERE username = ?`, username,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &key, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, errUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to look up user: %w", err)
	}
	u.RegistrationKey = key.String
	return u, nil
}

// Exists reports whether username or email is already taken.
func (r *Repository) Exists(ctx context.Context, username, email string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ? OR email = ?`, username, email,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check existing users: %w", err)
	}
	return count > 0, nil
}

// Create inserts u and returns its id. A unique key violation from a
// concurrent registration is reported as errDuplicateUser.
func (r *Repository) Create(ctx context.Context, u models.User) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (username, email, password, registration_key)
		VALUES (?, ?, ?, ?)`,
		u.Username, u.Email, u.PasswordHash, u.RegistrationKey)
	if err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
			return 0, errDuplicateUser
		}
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	return res.LastInsertId()
}

// List returns all users without their password hashes.
func (r *Repository) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, username, email, created_at FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
