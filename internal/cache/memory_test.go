package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCacheContract(t *testing.T, c BlockedSetCache) {
	ctx := context.Background()

	t.Run("miss before set", func(t *testing.T) {
		require.NoError(t, c.Invalidate(ctx))

		ids, hit, err := c.Get(ctx)
		require.NoError(t, err)
		assert.False(t, hit)
		assert.Nil(t, ids)
	})

	t.Run("hit after set", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, []int64{3, 9}))

		ids, hit, err := c.Get(ctx)
		require.NoError(t, err)
		assert.True(t, hit)
		assert.Equal(t, []int64{3, 9}, ids)
	})

	t.Run("empty list is a hit", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, nil))

		ids, hit, err := c.Get(ctx)
		require.NoError(t, err)
		assert.True(t, hit)
		assert.Empty(t, ids)
	})

	t.Run("invalidate clears", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, []int64{1}))
		require.NoError(t, c.Invalidate(ctx))

		_, hit, err := c.Get(ctx)
		require.NoError(t, err)
		assert.False(t, hit)
	})
}

func TestMemoryBlockedSetCache(t *testing.T) {
	runCacheContract(t, NewMemoryBlockedSetCache())
}

func TestMemoryBlockedSetCache_ReturnsCopies(t *testing.T) {
	c := NewMemoryBlockedSetCache()
	ctx := context.Background()

	src := []int64{1, 2}
	require.NoError(t, c.Set(ctx, src))
	src[0] = 99

	ids, _, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)

	ids[1] = 77
	again, _, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, again)
}
