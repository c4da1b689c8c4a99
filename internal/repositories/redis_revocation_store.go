package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisBlocklistPrefix = "blocklist:"

// RedisRevocationStore stores each revoked jti as a key whose TTL is the
// token's remaining lifetime, so Redis expires entries on its own.
type RedisRevocationStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

var _ RevocationStore = (*RedisRevocationStore)(nil)

func NewRedisRevocationStore(client redis.UniversalClient) *RedisRevocationStore {
	return &RedisRevocationStore{client: client, now: time.Now}
}

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (s *RedisRevocationStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) (bool, error) {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		// already expired; decoding rejects it before the blocklist is consulted
		return false, nil
	}
	// SET NX keeps the first TTL on a repeated logout
	added, err := s.client.SetNX(ctx, redisBlocklistPrefix+jti, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("blocklist token: %w", err)
	}
	return added, nil
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, redisBlocklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CleanupExpired is a no-op: keys carry their own TTL.
func (s *RedisRevocationStore) CleanupExpired(context.Context) error {
	return nil
}
