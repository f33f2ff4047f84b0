package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exercise runs the behaviour every implementation shares.
func exercise(t *testing.T, cache Cache) {
	ctx := context.Background()

	t.Run("Set and Get", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, "circle:c1", "Maple St", time.Minute))
		got, ok := cache.Get(ctx, "circle:c1")
		assert.True(t, ok)
		assert.Equal(t, "Maple St", got)
		assert.True(t, cache.Exists(ctx, "circle:c1"))
	})

	t.Run("Missing", func(t *testing.T) {
		_, ok := cache.Get(ctx, "nope")
		assert.False(t, ok)
		assert.False(t, cache.Exists(ctx, "nope"))
	})

	t.Run("SetNX", func(t *testing.T) {
		ok, err := cache.SetNX(ctx, "idem:k1", "1", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = cache.SetNX(ctx, "idem:k1", "2", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)
		got, _ := cache.Get(ctx, "idem:k1")
		assert.Equal(t, "1", got)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, "gone", "x", time.Minute))
		require.NoError(t, cache.Delete(ctx, "gone"))
		assert.False(t, cache.Exists(ctx, "gone"))
		assert.NoError(t, cache.Delete(ctx, "gone"))
	})
}

func TestLocalCache(t *testing.T) {
	cache := NewLocalCache(LocalConfig{MaxSize: 100, DefaultExpiration: 5 * time.Minute})
	defer cache.Close()
	exercise(t, cache)
}

func TestLocalCache_ExpiryAndEviction(t *testing.T) {
	ctx := context.Background()
	cache := NewLocalCache(LocalConfig{MaxSize: 2, DefaultExpiration: time.Minute})
	defer cache.Close()

	require.NoError(t, cache.Set(ctx, "short", 1, 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)
	assert.False(t, cache.Exists(ctx, "short"))

	ok, err := cache.SetNX(ctx, "short", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, cache.Set(ctx, "a", 1, 0))
	require.NoError(t, cache.Set(ctx, "b", 2, 0))
	assert.False(t, cache.Exists(ctx, "short"))
}

func TestGoCache(t *testing.T) {
	cache := NewGoCache(LocalConfig{DefaultExpiration: time.Minute, CleanupInterval: time.Minute})
	defer cache.Close()
	exercise(t, cache)
}

func TestRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cache, err := NewRedisCache(RedisConfig{Addr: mr.Addr(), KeyPrefix: "ng:"})
	require.NoError(t, err)
	defer cache.Close()
	exercise(t, cache)

	assert.True(t, mr.Exists("ng:circle:c1"))
	require.NoError(t, cache.Set(context.Background(), "ttl", "v", time.Second))
	mr.FastForward(2 * time.Second)
	assert.False(t, cache.Exists(context.Background(), "ttl"))
}

func TestRedisCache_RawValue(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewRedisCacheFromClient(client, "")
	defer cache.Close()

	require.NoError(t, mr.Set("plain", "not-json"))
	got, ok := cache.Get(context.Background(), "plain")
	assert.True(t, ok)
	assert.Equal(t, "not-json", got)
}

func TestNewCache(t *testing.T) {
	c, err := NewCache(Config{})
	require.NoError(t, err)
	assert.NotNil(t, c)

	c, err = NewCache(Config{Type: "gocache"})
	require.NoError(t, err)
	assert.NotNil(t, c)

	_, err = NewCache(Config{Type: "memcached"})
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	c, err = NewCache(Config{Type: "redis", Redis: RedisConfig{Addr: mr.Addr()}})
	require.NoError(t, err)
	assert.NoError(t, c.Close())
}
