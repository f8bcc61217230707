package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/matthieukhl/shopfront/internal/apperr"
	"github.com/matthieukhl/shopfront/internal/models"
)

var (
	ErrMissingCredentials = apperr.Validation("username and password are required")
	ErrMissingFields      = apperr.Validation("username, email and password are required")
	ErrFieldTooLong       = apperr.Validation("username is limited to 50 characters and email to 100")
	ErrInvalidCredentials = apperr.Auth("invalid username or password")
	ErrInvalidKey         = apperr.Auth("invalid registration key")
	ErrUserExists         = apperr.Conflict("username or email already exists")
	ErrInvalidToken       = apperr.Auth("invalid or expired token")
)

// Column limits of the users table.
const (
	maxUsernameChars = 50
	maxEmailChars    = 100
)

// UserStore is the persistence the auth service needs.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (models.User, error)
	Exists(ctx context.Context, username, email string) (bool, error)
	Create(ctx context.Context, u models.User) (int64, error)
}

// Session is what a successful login hands back to the client.
type Session struct {
	Token    string `json:"token"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

type Service struct {
	users           UserStore
	tokens          TokenStore
	registrationKey string
	log             *slog.Logger
}

// NewService builds the auth service. An empty registrationKey disables
// registration entirely.
func NewService(users UserStore, tokens TokenStore, registrationKey string, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{users: users, tokens: tokens, registrationKey: registrationKey, log: log}
}

func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Session{}, ErrMissingCredentials
	}

	u, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, errUserNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, apperr.Internal("failed to log in", err)
	}
	if !CheckPassword(u.PasswordHash, password) {
		s.log.Info("login rejected", slog.String("username", username))
		return Session{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(ctx, u.ID)
	if err != nil {
		return Session{}, apperr.Internal("failed to log in", err)
	}
	return Session{Token: token, UserID: u.ID, Username: u.Username}, nil
}

func (s *Service) Register(ctx context.Context, username, email, password, key string) (int64, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return 0, ErrMissingFields
	}
	if utf8.RuneCountInString(username) > maxUsernameChars || utf8.RuneCountInString(email) > maxEmailChars {
		return 0, ErrFieldTooLong
	}
	if !s.keyMatches(key) {
		s.log.Warn("registration rejected", slog.String("username", username))
		return 0, ErrInvalidKey
	}

	exists, err := s.users.Exists(ctx, username, email)
	if err != nil {
		return 0, apperr.Internal("failed to register user", err)
	}
	if exists {
		return 0, ErrUserExists
	}

	hash, err := HashPassword(password)
	if err != nil {
		return 0, apperr.Internal("failed to register user", err)
	}
	id, err := s.users.Create(ctx, models.User{
		Username:        username,
		Email:           email,
		PasswordHash:    hash,
		RegistrationKey: key,
	})
	if errors.Is(err, errDuplicateUser) {
		return 0, ErrUserExists
	}
	if err != nil {
		return 0, apperr.Internal("failed to register user", err)
	}

	s.log.Info("user registered", slog.Int64("user_id", id), slog.String("username", username))
	return id, nil
}

func (s *Service) keyMatches(key string) bool {
	if s.registrationKey == "" || key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(s.registrationKey)) == 1
}

// Resolve returns the user id bound to token.
func (s *Service) Resolve(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, ErrInvalidToken
	}
	id, err := s.tokens.Resolve(ctx, token)
	if errors.Is(err, errTokenNotFound) {
		return 0, ErrInvalidToken
	}
	if err != nil {
		return 0, apperr.Internal("failed to resolve token", err)
	}
	return id, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidToken
	}
	if err := s.tokens.Revoke(ctx, token); err != nil {
		return apperr.Internal("failed to log out", err)
	}
	return nil
}
