package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCacheSetAndGet(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "foo", "bar", time.Minute))

	val, err := cache.Get(ctx, "foo")
	require.NoError(t, err)
	require.Equal(t, "bar", val)
}

func TestCacheDelete(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "foo", "bar", time.Minute))
	require.NoError(t, cache.Delete(ctx, "foo"))

	_, err := cache.Get(ctx, "foo")
	require.Error(t, err, "deleted key should miss")
}

func TestNullCacheAlwaysMisses(t *testing.T) {
	cache := NewNullCache()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "foo", "bar", time.Minute))

	_, err := cache.Get(ctx, "foo")
	require.Error(t, err, "null cache never stores")

	require.NoError(t, cache.Delete(ctx, "foo"))
}
