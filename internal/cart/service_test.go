package cart

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/matthieukhl/shopfront/internal/apperr"
	"github.com/matthieukhl/shopfront/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewService(NewRedisStore(client, time.Hour)), mr
}

func TestService_GetEmpty(t *testing.T) {
	svc, _ := newTestService(t)

	lines, err := svc.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.NotNil(t, lines)
	assert.Empty(t, lines)
}

func TestService_AddPersistsPerSession(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "sess-1", 10, 2)
	require.NoError(t, err)
	lines, err := svc.Add(ctx, "sess-1", 10, 3)
	require.NoError(t, err)
	assert.Equal(t, []models.CartLine{{ProductID: 10, Quantity: 5}}, lines)

	other, err := svc.Get(ctx, "sess-2")
	require.NoError(t, err)
	assert.Empty(t, other)

	assert.True(t, mr.Exists("cart:sess-1"))
	assert.Equal(t, time.Hour, mr.TTL("cart:sess-1"))
}

func TestService_AddHugeQuantityIsCapped(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "sess-1", 10, 5)
	require.NoError(t, err)
	_, err = svc.Add(ctx, "sess-1", 10, math.MaxInt)
	require.NoError(t, err)

	lines, err := svc.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, []models.CartLine{{ProductID: 10, Quantity: MaxQuantity}}, lines)
}

func TestService_RemoveAndClear(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "s", 1, 1)
	require.NoError(t, err)
	_, err = svc.Add(ctx, "s", 2, 1)
	require.NoError(t, err)

	lines, err := svc.Remove(ctx, "s", 99)
	require.NoError(t, err)
	assert.Len(t, lines, 2)

	lines, err = svc.Remove(ctx, "s", 1)
	require.NoError(t, err)
	assert.Equal(t, []models.CartLine{{ProductID: 2, Quantity: 1}}, lines)

	require.NoError(t, svc.Clear(ctx, "s"))
	assert.False(t, mr.Exists("cart:s"))
}

func TestService_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "s", 0, 1)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Get(ctx, "  ")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestService_StoreFailureIsInternal(t *testing.T) {
	svc, mr := newTestService(t)
	mr.Close()

	_, err := svc.Add(context.Background(), "s", 1, 1)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}
