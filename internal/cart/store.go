package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/matthieukhl/shopfront/internal/models"
	"github.com/redis/go-redis/v9"
)

// Store persists carts by session id.
type Store interface {
	Load(ctx context.Context, sessionID string) ([]models.CartLine, error)
	Save(ctx context.Context, sessionID string, lines []models.CartLine) error
	Delete(ctx context.Context, sessionID string) error
}

// RedisStore keeps each cart as a JSON list under cart:<session id>.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func key(sessionID string) string {
	return "cart:" + sessionID
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) ([]models.CartLine, error) {
	data, err := s.client.Get(ctx, key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return []models.CartLine{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	lines := []models.CartLine{}
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	return lines, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, lines []models.CartLine) error {
	if len(lines) == 0 {
		return s.Delete(ctx, sessionID)
	}

	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.client.Set(ctx, key(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, key(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
