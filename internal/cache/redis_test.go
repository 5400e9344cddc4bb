package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/avgitgw/internal/config"
	"github.com/vyrodovalexey/avgitgw/internal/observability"
)

func newTestRedisCache(t *testing.T) (*redisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	c, err := newRedisCache(&config.CacheConfig{
		Enabled: true,
		Type:    config.CacheTypeRedis,
		Redis: config.RedisConfig{
			Address: mr.Addr(),
		},
	}, observability.NopLogger(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return c, mr
}

func TestRedisCache_MissingAddress(t *testing.T) {
	t.Parallel()

	c, err := newRedisCache(&config.CacheConfig{
		Enabled: true,
		Type:    config.CacheTypeRedis,
	}, observability.NopLogger(), nil)
	assert.Nil(t, c)
	assert.Error(t, err)
}

func TestRedisCache_ConnectionFailure(t *testing.T) {
	t.Parallel()

	c, err := newRedisCache(&config.CacheConfig{
		Enabled: true,
		Type:    config.CacheTypeRedis,
		Redis: config.RedisConfig{
			Address: "127.0.0.1:1",
		},
	}, observability.NopLogger(), nil)
	assert.Nil(t, c)
	assert.ErrorIs(t, err, ErrConnectionFailed)
}

func TestRedisCache_SetGet(t *testing.T) {
	t.Parallel()

	c, _ := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "user:alice", []byte("1"), time.Minute))

	got, err := c.Get(ctx, "user:alice")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), got)
}

func TestRedisCache_GetMiss(t *testing.T) {
	t.Parallel()

	c, _ := newTestRedisCache(t)

	_, err := c.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_KeyPrefix(t *testing.T) {
	t.Parallel()

	c, mr := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", []byte("v"), time.Minute))

	// Default prefix is applied to the stored key.
	assert.True(t, mr.Exists("avgitgw:key"))
	assert.False(t, mr.Exists("key"))
}

func TestRedisCache_CustomKeyPrefix(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)

	c, err := newRedisCache(&config.CacheConfig{
		Enabled:   true,
		Type:      config.CacheTypeRedis,
		KeyPrefix: "gw:",
		Redis: config.RedisConfig{
			Address: mr.Addr(),
		},
	}, observability.NopLogger(), nil)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	require.NoError(t, c.Set(context.Background(), "key", []byte("v"), time.Minute))
	assert.True(t, mr.Exists("gw:key"))
}

func TestRedisCache_Expiry(t *testing.T) {
	t.Parallel()

	c, mr := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", []byte("v"), time.Second))

	mr.FastForward(2 * time.Second)

	_, err := c.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_Delete(t *testing.T) {
	t.Parallel()

	c, _ := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", []byte("v"), time.Minute))
	require.NoError(t, c.Delete(ctx, "key"))

	_, err := c.Get(ctx, "key")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_Exists(t *testing.T) {
	t.Parallel()

	c, _ := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "present", []byte("v"), time.Minute))

	exists, err := c.Exists(ctx, "present")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = c.Exists(ctx, "absent")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRedisCache_Stats(t *testing.T) {
	t.Parallel()

	c, _ := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "key", []byte("v"), time.Minute))

	_, _ = c.Get(ctx, "key")
	_, _ = c.Get(ctx, "absent")

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestRedisCache_ServerDown(t *testing.T) {
	t.Parallel()

	c, mr := newTestRedisCache(t)
	ctx := context.Background()

	mr.Close()

	_, err := c.Get(ctx, "key")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestNew_RedisType(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)

	c, err := New(&config.CacheConfig{
		Enabled: true,
		Type:    config.CacheTypeRedis,
		Redis: config.RedisConfig{
			Address: mr.Addr(),
		},
	}, observability.NopLogger())
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	_, ok := c.(*redisCache)
	assert.True(t, ok)
}
