package redis_a_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redis_a "github.com/hpratama/gudang-be/internal/adapters/redis_adapter"
	"github.com/hpratama/gudang-be/internal/core/domain"
	"github.com/hpratama/gudang-be/test/helpers"
)

func setupCache(t *testing.T) (*redis_a.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return redis_a.NewCache(client, 5*time.Minute, helpers.TestLogger()), mr
}

func TestCache_SetAndGet(t *testing.T) {
	ctx := context.Background()
	cache, _ := setupCache(t)

	tests := []struct {
		name  string
		key   string
		value interface{}
	}{
		{
			name:  "stores_and_retrieves_string",
			key:   "test:string",
			value: "test value",
		},
		{
			name: "stores_and_retrieves_stock_row",
			key:  "stock:warehouse:1",
			value: domain.Stock{
				ProductID:   1,
				WarehouseID: 1,
				Quantity:    12,
			},
		},
		{
			name:  "stores_and_retrieves_slice",
			key:   "test:slice",
			value: []string{"SN001", "SN002"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, cache.Set(ctx, tt.key, tt.value))

			switch expected := tt.value.(type) {
			case string:
				var got string
				require.NoError(t, cache.Get(ctx, tt.key, &got))
				assert.Equal(t, expected, got)
			case domain.Stock:
				var got domain.Stock
				require.NoError(t, cache.Get(ctx, tt.key, &got))
				assert.Equal(t, expected, got)
			case []string:
				var got []string
				require.NoError(t, cache.Get(ctx, tt.key, &got))
				assert.Equal(t, expected, got)
			}
		})
	}
}

func TestCache_Get_Miss(t *testing.T) {
	ctx := context.Background()
	cache, _ := setupCache(t)

	var got string
	err := cache.Get(ctx, "missing:key", &got)
	assert.ErrorIs(t, err, redis_a.ErrCacheMiss)
}

func TestCache_SetWithTTL_Expires(t *testing.T) {
	ctx := context.Background()
	cache, mr := setupCache(t)

	require.NoError(t, cache.SetWithTTL(ctx, "expiring", "value", time.Second))

	mr.FastForward(2 * time.Second)

	var got string
	err := cache.Get(ctx, "expiring", &got)
	assert.ErrorIs(t, err, redis_a.ErrCacheMiss)
}

func TestCache_Delete(t *testing.T) {
	ctx := context.Background()
	cache, _ := setupCache(t)

	require.NoError(t, cache.Set(ctx, "a", "1"))
	require.NoError(t, cache.Set(ctx, "b", "2"))

	require.NoError(t, cache.Delete(ctx, "a", "b"))

	exists, err := cache.Exists(ctx, "a")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, cache.Delete(ctx), "deleting nothing is a no-op")
}

func TestCache_Exists(t *testing.T) {
	ctx := context.Background()
	cache, _ := setupCache(t)

	require.NoError(t, cache.Set(ctx, "present", "1"))

	exists, err := cache.Exists(ctx, "present")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = cache.Exists(ctx, "present", "absent")
	require.NoError(t, err)
	assert.False(t, exists, "all keys must exist")
}

func TestBuildKey(t *testing.T) {
	assert.Equal(t, "stock:warehouse:1", redis_a.BuildKey(redis_a.PrefixStock, "warehouse", "1"))
	assert.Equal(t, "sync", redis_a.BuildKey(redis_a.PrefixSync))
}
