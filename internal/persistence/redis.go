package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/chat-service/internal/config"
	"github.com/spec-kit/chat-service/internal/domain"
)

const presenceTTL = 5 * time.Minute

// Redis wraps the go-redis client. It backs the distributed rate-limit store
// and the presence cache.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis using the provided configuration.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// SetPresence records a user's availability with a short TTL so stale entries
// decay to offline on their own.
func (r *Redis) SetPresence(ctx context.Context, userID string, p domain.Presence) error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Set(ctx, "presence:"+userID, string(p), presenceTTL).Err()
}

// GetPresence returns a user's availability, defaulting to offline.
func (r *Redis) GetPresence(ctx context.Context, userID string) (domain.Presence, error) {
	if r == nil || r.Client == nil {
		return domain.PresenceOffline, nil
	}
	val, err := r.Client.Get(ctx, "presence:"+userID).Result()
	if err == redis.Nil {
		return domain.PresenceOffline, nil
	}
	if err != nil {
		return domain.PresenceOffline, err
	}
	return domain.Presence(val), nil
}
