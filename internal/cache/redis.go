package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/memberguard/block-registry/internal/db"
)

const blockedUserIDsKey = "blocked_user_ids"

// RedisBlockedSetCache stores the blocked id list as one JSON array so every
// process sees the same entry and a single DEL invalidates it cluster-wide.
type RedisBlockedSetCache struct {
	redisClient *redis.Client
	key         string
	ttl         time.Duration
}

// NewRedisBlockedSetCache creates a new RedisBlockedSetCache. A zero ttl keeps
// the entry until it is invalidated.
func NewRedisBlockedSetCache(redisClient *redis.Client, prefix string, ttl time.Duration) *RedisBlockedSetCache {
	return &RedisBlockedSetCache{
		redisClient: redisClient,
		key:         prefix + ":" + blockedUserIDsKey,
		ttl:         ttl,
	}
}

// Get returns the cached ids.
func (c *RedisBlockedSetCache) Get(ctx context.Context) ([]int64, bool, error) {
	raw, err := c.redisClient.Get(ctx, c.key).Bytes()
	err = db.WrapRedisError(err, "read blocked user cache")
	if db.IsNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var ids []int64
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, false, fmt.Errorf("failed to decode blocked user cache: %w", err)
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, true, nil
}

// Set replaces the cached ids.
func (c *RedisBlockedSetCache) Set(ctx context.Context, ids []int64) error {
	if ids == nil {
		ids = []int64{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to encode blocked user cache: %w", err)
	}

	return db.WrapRedisError(c.redisClient.Set(ctx, c.key, raw, c.ttl).Err(), "write blocked user cache")
}

// Invalidate deletes the cached entry.
func (c *RedisBlockedSetCache) Invalidate(ctx context.Context) error {
	return db.WrapRedisError(c.redisClient.Del(ctx, c.key).Err(), "invalidate blocked user cache")
}
