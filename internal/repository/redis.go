package repository

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/memberguard/block-registry/internal/db"
	"github.com/memberguard/block-registry/internal/models"
	"github.com/memberguard/block-registry/internal/policy"
)

const (
	fieldBlocked   = "blocked"
	fieldExpiresAt = "expires_at"
)

// RedisBlockRepository keeps one hash per user plus a sorted set of blocked
// ids scored by expiry (unix seconds, +inf for indefinite blocks).
type RedisBlockRepository struct {
	client *redis.Client
	prefix string
}

// NewRedisBlockRepository creates a new RedisBlockRepository. Keys are namespaced by prefix.
func NewRedisBlockRepository(client *redis.Client, prefix string) *RedisBlockRepository {
	return &RedisBlockRepository{client: client, prefix: prefix}
}

func (r *RedisBlockRepository) recordKey(userID int64) string {
	return fmt.Sprintf("%s:block:%d", r.prefix, userID)
}

func (r *RedisBlockRepository) indexKey() string {
	return r.prefix + ":blocked"
}

// GetRecord reads the user's hash.
func (r *RedisBlockRepository) GetRecord(ctx context.Context, userID int64) (models.BlockRecord, error) {
	record := models.BlockRecord{UserID: userID}
	if err := ValidateUserID(userID); err != nil {
		return record, err
	}

	fields, err := r.client.HGetAll(ctx, r.recordKey(userID)).Result()
	if err != nil {
		return record, db.WrapRedisError(err, "get block record")
	}
	if len(fields) == 0 {
		return record, nil
	}

	record.Blocked = fields[fieldBlocked] == "1"
	exp, err := policy.ParseStoredExpiration(fields[fieldExpiresAt])
	if err != nil {
		return record, fmt.Errorf("get block record %d: %w", userID, err)
	}
	record.ExpiresAt = exp
	return record, nil
}

// SetBlocked writes the hash and the index entry in one MULTI/EXEC.
func (r *RedisBlockRepository) SetBlocked(ctx context.Context, userID int64, exp models.Expiration) error {
	if err := ValidateUserID(userID); err != nil {
		return err
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.recordKey(userID),
			fieldBlocked, "1",
			fieldExpiresAt, policy.FormatStoredExpiration(exp),
		)
		pipe.ZAdd(ctx, r.indexKey(), redis.Z{
			Score:  expiryScore(exp),
			Member: strconv.FormatInt(userID, 10),
		})
		return nil
	})
	return db.WrapRedisError(err, "set block record")
}

// ClearBlocked removes the hash and the index entry in one MULTI/EXEC.
func (r *RedisBlockRepository) ClearBlocked(ctx context.Context, userID int64) (bool, error) {
	if err := ValidateUserID(userID); err != nil {
		return false, err
	}

	var deleted *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, r.recordKey(userID))
		pipe.ZRem(ctx, r.indexKey(), strconv.FormatInt(userID, 10))
		return nil
	})
	if err != nil {
		return false, db.WrapRedisError(err, "clear block record")
	}
	return deleted.Val() > 0, nil
}

// ListBlockedUserIDs range-queries the index for expiries after now - buffer.
func (r *RedisBlockRepository) ListBlockedUserIDs(ctx context.Context, now time.Time, buffer time.Duration) ([]int64, error) {
	cutoff := now.Add(-buffer).Unix()

	members, err := r.client.ZRangeByScore(ctx, r.indexKey(), &redis.ZRangeBy{
		Min: "(" + strconv.FormatInt(cutoff, 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, db.WrapRedisError(err, "list blocked users")
	}

	userIDs := make([]int64, 0, len(members))
	for _, member := range members {
		userID, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("list blocked users: invalid index member %q: %w", member, err)
		}
		userIDs = append(userIDs, userID)
	}
	sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })

	return userIDs, nil
}

// Ping checks the Redis connection.
func (r *RedisBlockRepository) Ping(ctx context.Context) error {
	return db.WrapRedisError(r.client.Ping(ctx).Err(), "ping redis")
}

func expiryScore(exp models.Expiration) float64 {
	at, timed := exp.Time()
	if !timed {
		return math.Inf(1)
	}
	return float64(at.Unix())
}
