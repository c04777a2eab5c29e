package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vostra/vostra-backend/config"
	"github.com/vostra/vostra-backend/pkg/logger"
)

var client *redis.Client

// Init initializes Redis connection
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		client = nil
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully", nil)
	return nil
}

// GetClient returns the Redis client instance. Nil when Redis is disabled or
// unreachable; callers must degrade gracefully.
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection", nil)
		return client.Close()
	}
	return nil
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

// RegisterSession records a freshly issued guest session token with a TTL.
func RegisterSession(ctx context.Context, token string, ttl time.Duration) error {
	if client == nil {
		return nil
	}

	if err := client.Set(ctx, sessionKey(token), "active", ttl).Err(); err != nil {
		logger.Error("Failed to register session", err, nil)
		return err
	}

	logger.Debug("Session registered", map[string]interface{}{
		"ttl": ttl.String(),
	})
	return nil
}

// TouchSession slides a session's TTL forward on activity.
func TouchSession(ctx context.Context, token string, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	return client.Expire(ctx, sessionKey(token), ttl).Err()
}

// SessionAlive reports whether a session token is still registered. When
// Redis is unavailable the answer is (false, non-nil error) so callers can
// distinguish "expired" from "unknown".
func SessionAlive(ctx context.Context, token string) (bool, error) {
	if client == nil {
		return false, redis.ErrClosed
	}

	n, err := client.Exists(ctx, sessionKey(token)).Result()
	if err != nil {
		logger.Error("Failed to check session liveness", err, nil)
		return false, err
	}
	return n > 0, nil
}
