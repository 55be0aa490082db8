package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oggyb/matchbot/internal/config"
)

const (
	keyPrefix = "matchbot:"

	// KeyStats holds the admin statistics snapshot.
	KeyStats = keyPrefix + "stats"

	LikesReceivedTTL = time.Hour
	StatsTTL         = 30 * time.Second
)

// RedisCache is an optional read-through cache. A nil *RedisCache is valid
// and behaves as a cache that always misses, so callers never branch on
// whether Redis is configured.
type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Returns nil when REDIS_ADDR is empty; Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	if cfg.Redis.Addr == "" {
		return nil
	}
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	if c == nil {
		return nil
	}
	return c.Client.Close()
}

func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	if c == nil {
		return nil
	}
	return c.Client.Del(ctx, keys...).Err()
}

// KeyForLikesReceived generates the Redis key for a user's received-likes count.
func KeyForLikesReceived(userID int64) string {
	return fmt.Sprintf("%slikes:received:%d", keyPrefix, userID)
}

// SetLikesReceived stores the count with a fresh TTL.
func (c *RedisCache) SetLikesReceived(ctx context.Context, userID int64, count int64) error {
	if c == nil {
		return nil
	}
	return c.Client.Set(ctx, KeyForLikesReceived(userID), count, LikesReceivedTTL).Err()
}

// GetLikesReceived returns the cached count. ok is false on a miss.
func (c *RedisCache) GetLikesReceived(ctx context.Context, userID int64) (count int64, ok bool, err error) {
	if c == nil {
		return 0, false, nil
	}
	key := KeyForLikesReceived(userID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil // cache miss
	} else if err != nil {
		return 0, false, err
	}
	count, err = strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	// refresh TTL on access
	_ = c.Client.Expire(ctx, key, LikesReceivedTTL).Err()
	return count, true, nil
}

// InvalidateLikesReceived drops the cached count so the next read hits the store.
func (c *RedisCache) InvalidateLikesReceived(ctx context.Context, userID int64) error {
	return c.Del(ctx, KeyForLikesReceived(userID))
}

// SetJSON stores v encoded as JSON.
func (c *RedisCache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return c.Client.Set(ctx, key, b, ttl).Err()
}

// GetJSON decodes the value under key into dst. ok is false on a miss or
// on a value that no longer decodes.
func (c *RedisCache) GetJSON(ctx context.Context, key string, dst any) (ok bool, err error) {
	if c == nil {
		return false, nil
	}
	b, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return false, nil
	}
	return true, nil
}
