package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenStore(t *testing.T) (*RedisTokenStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisTokenStore(client, time.Hour), mr
}

func TestRedisTokenStore_IssueResolveRevoke(t *testing.T) {
	store, mr := newTestTokenStore(t)
	ctx := context.Background()

	token, err := store.Issue(ctx, 42)
	require.NoError(t, err)
	assert.Len(t, token, 32)
	assert.Equal(t, time.Hour, mr.TTL("token:"+token))

	id, err := store.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	require.NoError(t, store.Revoke(ctx, token))
	_, err = store.Resolve(ctx, token)
	assert.ErrorIs(t, err, errTokenNotFound)
}

func TestRedisTokenStore_TokensAreUnique(t *testing.T) {
	store, _ := newTestTokenStore(t)
	ctx := context.Background()

	a, err := store.Issue(ctx, 1)
	require.NoError(t, err)
	b, err := store.Issue(ctx, 1)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestRedisTokenStore_Expiry(t *testing.T) {
	store, mr := newTestTokenStore(t)
	ctx := context.Background()

	token, err := store.Issue(ctx, 7)
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)
	_, err = store.Resolve(ctx, token)
	assert.ErrorIs(t, err, errTokenNotFound)
}
