package session

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/memberguard/block-registry/internal/db"
)

func TestRedisStore_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	defer client.Close()

	s := NewRedisStore(client, "test")
	ctx := context.Background()

	_, err := s.Create(ctx, 1, time.Minute)
	assert.True(t, db.IsStoreUnavailable(err), "create: %v", err)

	_, ok, err := s.Lookup(ctx, "token")
	assert.False(t, ok)
	assert.True(t, db.IsStoreUnavailable(err), "lookup: %v", err)

	err = s.DestroyAll(ctx, 1)
	assert.True(t, db.IsStoreUnavailable(err), "destroy: %v", err)
}
