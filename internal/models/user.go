package models

import "time"

// User is a registered customer or administrator.
type User struct {
	ID              int64     `json:"id" db:"id"`
	Username        string    `json:"username" db:"username"`
	Email           string    `json:"email" db:"email"`
	PasswordHash    string    `json:"-" db:"password"`
	RegistrationKey string    `json:"-" db:"registration_key"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}
