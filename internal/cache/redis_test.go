package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/leehai1107/shop-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisCache instance
func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cache := NewRedisCache(client)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return cache, mr, cleanup
}

func TestGet_Success(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	userID := "user123"

	cart := &domain.Cart{
		UserID: userID,
		Lines: []domain.CartLine{
			{ProductID: 1, Quantity: 2, Selected: true},
			{ProductID: 2, Quantity: 3, Selected: false},
		},
		Delivery:  &domain.DeliverySelection{ProductID: 100, Address: "street 1"},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	cartJSON, _ := json.Marshal(cart)
	mr.Set(cacheKey(userID), string(cartJSON))

	result, err := cache.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, userID, result.UserID)
	assert.Len(t, result.Lines, 2)
	assert.Equal(t, int64(1), result.Lines[0].ProductID)
	assert.True(t, result.Lines[0].Selected)
	require.NotNil(t, result.Delivery)
	assert.Equal(t, "street 1", result.Delivery.Address)
}

func TestGet_CacheMiss(t *testing.T) {
	cache, _, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()

	result, err := cache.Get(ctx, "nonexistent")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, result)
}

func TestGet_InvalidJSON(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	userID := "user123"
	key := cacheKey(userID)

	cart := &domain.Cart{
		UserID: userID,
		Lines: []domain.CartLine{
			{ProductID: 10, Quantity: 5, Selected: true},
		},
	}
	jsonCart, err := json.Marshal(cart)
	require.NoError(t, err)
	invalidCart := jsonCart[0:10]
	e2 := mr.Set(key, string(invalidCart))
	require.NoError(t, e2)

	_, cacheError := cache.Get(ctx, userID)
	require.ErrorContains(t, cacheError, "unmarshal cart failed")
}

func TestSet_Success(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	userID := "user456"

	cart := &domain.Cart{
		UserID: userID,
		Lines: []domain.CartLine{
			{ProductID: 10, Quantity: 5, Selected: true},
		},
	}

	err := cache.Set(ctx, userID, cart)
	require.NoError(t, err)

	stored, e2 := mr.Get(cacheKey(userID))
	assert.NotEmpty(t, stored)
	require.NoError(t, e2)

	var storedCart domain.Cart
	err = json.Unmarshal([]byte(stored), &storedCart)
	require.NoError(t, err)
	assert.Equal(t, userID, storedCart.UserID)
	assert.Len(t, storedCart.Lines, 1)
}

func TestSet_WithTTL(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	userID := "user789"

	cart := &domain.Cart{
		UserID: userID,
		Lines:  []domain.CartLine{},
	}

	err := cache.Set(ctx, userID, cart)
	require.NoError(t, err)

	ttl := mr.TTL(cacheKey(userID))
	assert.True(t, ttl >= 15*time.Minute, "TTL should be at least base TTL")
	assert.True(t, ttl <= 20*time.Minute, "TTL should be base + max jitter")
}

func TestDelete_Success(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	userID := "user999"

	cart := &domain.Cart{UserID: userID}
	cartJSON, _ := json.Marshal(cart)
	mr.Set(cacheKey(userID), string(cartJSON))

	assert.True(t, mr.Exists(cacheKey(userID)))

	err := cache.Delete(ctx, userID)
	require.NoError(t, err)

	assert.False(t, mr.Exists(cacheKey(userID)))
}

func TestDelete_NonExistentKey(t *testing.T) {
	cache, _, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()

	err := cache.Delete(ctx, "nonexistent")
	assert.NoError(t, err)
}

func TestCacheKey_Format(t *testing.T) {
	userID := "test123"
	key := cacheKey(userID)
	assert.Equal(t, "cart:test123", key)
}
