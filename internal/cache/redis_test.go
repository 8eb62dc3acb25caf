package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fjod/go_grocery/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
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

func sampleCart(userID string) *domain.Cart {
	offer := decimal.NewFromInt(35)
	return &domain.Cart{
		UserID: userID,
		Items: []domain.CartLineItem{
			{ProductID: "p1", VendorID: "v1", Name: "Milk", UnitPrice: decimal.NewFromInt(40), OfferPrice: &offer, Quantity: 2},
			{ProductID: "p2", VendorID: "v1", Name: "Eggs", UnitPrice: decimal.RequireFromString("12.5"), Quantity: 3},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestGet_Success(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	userID := "user123"
	cartJSON, err := json.Marshal(sampleCart(userID))
	require.NoError(t, err)
	require.NoError(t, mr.Set(cacheKey(userID), string(cartJSON)))

	result, err := cache.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, userID, result.UserID)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "p1", result.Items[0].ProductID)
	require.NotNil(t, result.Items[0].OfferPrice)
	assert.True(t, decimal.NewFromInt(35).Equal(*result.Items[0].OfferPrice))
	assert.True(t, decimal.RequireFromString("107.5").Equal(result.TotalPrice()))
}

func TestGet_CacheMiss(t *testing.T) {
	cache, _, cleanup := setupTestRedis(t)
	defer cleanup()

	result, err := cache.Get(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, result)
}

func TestGet_InvalidJSON(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	userID := "user123"
	cartJSON, err := json.Marshal(sampleCart(userID))
	require.NoError(t, err)
	require.NoError(t, mr.Set(cacheKey(userID), string(cartJSON[:10])))

	_, cacheErr := cache.Get(context.Background(), userID)
	require.ErrorContains(t, cacheErr, "unmarshal cart failed")
}

func TestSet_Success(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	userID := "user456"
	require.NoError(t, cache.Set(context.Background(), userID, sampleCart(userID)))

	stored, err := mr.Get(cacheKey(userID))
	require.NoError(t, err)
	assert.NotEmpty(t, stored)

	var storedCart domain.Cart
	require.NoError(t, json.Unmarshal([]byte(stored), &storedCart))
	assert.Equal(t, userID, storedCart.UserID)
	assert.Len(t, storedCart.Items, 2)
}

func TestSet_WithTTL(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	userID := "user789"
	require.NoError(t, cache.Set(context.Background(), userID, &domain.Cart{UserID: userID}))

	ttl := mr.TTL(cacheKey(userID))
	assert.GreaterOrEqual(t, ttl, 15*time.Minute, "TTL should be at least base TTL")
	assert.Less(t, ttl, 20*time.Minute, "TTL should stay below base + max jitter")
}

func TestSet_CustomTTL(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	cache.WithTTL(time.Minute)
	require.NoError(t, cache.Set(context.Background(), "u", &domain.Cart{UserID: "u"}))

	ttl := mr.TTL(cacheKey("u"))
	assert.GreaterOrEqual(t, ttl, time.Minute)
	assert.Less(t, ttl, 6*time.Minute)
}

func TestSetIfAbsent_KeepsNewerEntry(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	newer := sampleCart("u")
	newer.Version = 2
	require.NoError(t, cache.SetIfAbsent(ctx, "u", newer))
	assert.Greater(t, mr.TTL(cacheKey("u")), time.Duration(0))

	older := &domain.Cart{UserID: "u", Version: 1}
	require.NoError(t, cache.SetIfAbsent(ctx, "u", older))

	got, err := cache.Get(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Version)
	assert.Len(t, got.Items, 2)
}

func TestDelete_Success(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	userID := "user999"
	cartJSON, _ := json.Marshal(&domain.Cart{UserID: userID})
	require.NoError(t, mr.Set(cacheKey(userID), string(cartJSON)))
	assert.True(t, mr.Exists(cacheKey(userID)))

	require.NoError(t, cache.Delete(context.Background(), userID))
	assert.False(t, mr.Exists(cacheKey(userID)))
}

func TestDelete_NonExistentKey(t *testing.T) {
	cache, _, cleanup := setupTestRedis(t)
	defer cleanup()

	// Deleting non-existent key should not error
	assert.NoError(t, cache.Delete(context.Background(), "nonexistent"))
}

func TestCacheKey_Format(t *testing.T) {
	assert.Equal(t, "cart:test123", cacheKey("test123"))
}
