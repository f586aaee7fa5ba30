package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shhmatch/backend/internal/config"
)

// TTL for cached weekly recommendation lists. Lists are immutable for a
// given week apart from the responded flag, which invalidates the key.
const weeklyRecsTTL = time.Hour

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
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
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

// Get returns "" on cache miss.
func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	return c.Client.Del(ctx, keys...).Err()
}

// KeyForWeeklyRecs generates the cache key for a user's recommendation
// list for one batch week.
func (c *RedisCache) KeyForWeeklyRecs(userID, week string) string {
	return fmt.Sprintf("recs:%s:%s", userID, week)
}

func (c *RedisCache) GetWeeklyRecs(ctx context.Context, userID, week string) (string, error) {
	return c.Get(ctx, c.KeyForWeeklyRecs(userID, week))
}

func (c *RedisCache) SetWeeklyRecs(ctx context.Context, userID, week, payload string) error {
	return c.Set(ctx, c.KeyForWeeklyRecs(userID, week), payload, weeklyRecsTTL)
}

// InvalidateWeeklyRecs drops the cached list after the user responds to
// a recommendation.
func (c *RedisCache) InvalidateWeeklyRecs(ctx context.Context, userID, week string) error {
	return c.Del(ctx, c.KeyForWeeklyRecs(userID, week))
}

const lastRunKey = "recs:last_run"

// SetLastRunSummary stores the most recent batch run summary for the
// admin panel. 24h TTL; the audit log keeps the durable record.
func (c *RedisCache) SetLastRunSummary(ctx context.Context, payload string) error {
	return c.Set(ctx, lastRunKey, payload, 24*time.Hour)
}

func (c *RedisCache) GetLastRunSummary(ctx context.Context) (string, error) {
	return c.Get(ctx, lastRunKey)
}
