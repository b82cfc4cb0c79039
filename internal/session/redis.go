package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/memberguard/block-registry/internal/db"
)

// RedisStore keeps token -> user id keys with a TTL, plus a per-user set of
// that user's tokens so DestroyAll does not need to scan.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new RedisStore. Keys are namespaced by prefix.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) tokenKey(token string) string {
	return s.prefix + ":session:" + token
}

func (s *RedisStore) userKey(userID int64) string {
	return fmt.Sprintf("%s:sessions:%d", s.prefix, userID)
}

// Create issues a new session token for userID.
func (s *RedisStore) Create(ctx context.Context, userID int64, ttl time.Duration) (string, error) {
	token := uuid.New().String()

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.tokenKey(token), strconv.FormatInt(userID, 10), ttl)
		pipe.SAdd(ctx, s.userKey(userID), token)
		if ttl > 0 {
			pipe.Expire(ctx, s.userKey(userID), ttl)
		}
		return nil
	})
	if err != nil {
		return "", db.WrapRedisError(err, "create session")
	}
	return token, nil
}

// Lookup resolves a token to its user id.
func (s *RedisStore) Lookup(ctx context.Context, token string) (int64, bool, error) {
	raw, err := s.client.Get(ctx, s.tokenKey(token)).Result()
	err = db.WrapRedisError(err, "look up session")
	if db.IsNotFound(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt session %s: %w", token, err)
	}
	return userID, true, nil
}

// DestroyAll deletes every token of userID and the user's token set.
func (s *RedisStore) DestroyAll(ctx context.Context, userID int64) error {
	tokens, err := s.client.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return db.WrapRedisError(err, fmt.Sprintf("list sessions for user %d", userID))
	}

	keys := make([]string, 0, len(tokens)+1)
	for _, token := range tokens {
		keys = append(keys, s.tokenKey(token))
	}
	keys = append(keys, s.userKey(userID))

	return db.WrapRedisError(s.client.Del(ctx, keys...).Err(), fmt.Sprintf("destroy sessions for user %d", userID))
}
