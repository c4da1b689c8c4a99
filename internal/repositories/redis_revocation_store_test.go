package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisRevocationStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisRevocationStore(client)
}

func TestRedisRevocationStore_RevokeAndExpire(t *testing.T) {
	ctx := context.Background()
	mr, store := newTestRedis(t)

	added, err := store.Revoke(ctx, "jti-1", time.Now().Add(10*time.Minute))
	require.NoError(t, err)
	assert.True(t, added)

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.True(t, mr.Exists(redisBlocklistPrefix+"jti-1"))

	ttl := mr.TTL(redisBlocklistPrefix + "jti-1")
	assert.Greater(t, ttl, 9*time.Minute)
	assert.LessOrEqual(t, ttl, 10*time.Minute)

	mr.FastForward(11 * time.Minute)
	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisRevocationStore_Idempotent(t *testing.T) {
	ctx := context.Background()
	mr, store := newTestRedis(t)
	exp := time.Now().Add(time.Hour)

	first, err := store.Revoke(ctx, "jti-1", exp)
	require.NoError(t, err)
	second, err := store.Revoke(ctx, "jti-1", exp)
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second)
	assert.Len(t, mr.Keys(), 1)
	require.NoError(t, store.CleanupExpired(ctx))
}

func TestRedisRevocationStore_SkipsExpiredTokens(t *testing.T) {
	ctx := context.Background()
	mr, store := newTestRedis(t)

	added, err := store.Revoke(ctx, "old", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.False(t, added)
	assert.Empty(t, mr.Keys())
}

func TestRedisRevocationStore_ServerDown(t *testing.T) {
	mr, store := newTestRedis(t)
	mr.Close()

	_, err := store.IsRevoked(context.Background(), "jti-1")
	assert.Error(t, err)
	_, err = store.Revoke(context.Background(), "jti-1", time.Now().Add(time.Hour))
	assert.Error(t, err)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	client, err := NewRedisClient(ctx, "redis://"+mr.Addr())
	require.NoError(t, err)
	_ = client.Close()

	_, err = NewRedisClient(ctx, "not a url")
	assert.Error(t, err)
}
