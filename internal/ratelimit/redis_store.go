package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a fixed-window store backed by Redis, for deployments with
// more than one instance behind one limit. INCR is atomic server-side, so the
// same no-two-observers-of-one-count guarantee holds across processes.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates the store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "ratelimit:"}
}

// Incr implements Store using INCR plus a window-scoped TTL set on first hit.
func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	redisKey := s.prefix + key

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, window)
	pttl := pipe.PTTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, time.Time{}, err
	}

	remaining := pttl.Val()
	if remaining < 0 {
		remaining = window
	}
	return int(incr.Val()), time.Now().Add(remaining), nil
}
