package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memberguard/block-registry/internal/models"
)

// runRepositoryContract exercises behaviour every BlockRepository must share.
// reset must leave the backing store empty.
func runRepositoryContract(t *testing.T, repo BlockRepository, reset func(t *testing.T)) {
	ctx := context.Background()
	now := time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)

	t.Run("absent record is not blocked", func(t *testing.T) {
		reset(t)

		record, err := repo.GetRecord(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, int64(42), record.UserID)
		assert.False(t, record.Blocked)
		assert.True(t, record.IsZero())
	})

	t.Run("set then get returns the same expiration", func(t *testing.T) {
		reset(t)

		exp := models.At(now.Add(3 * time.Minute))
		require.NoError(t, repo.SetBlocked(ctx, 42, exp))

		record, err := repo.GetRecord(ctx, 42)
		require.NoError(t, err)
		assert.True(t, record.Blocked)
		assert.True(t, record.ExpiresAt.Equal(exp), "got %v want %v", record.ExpiresAt, exp)
	})

	t.Run("indefinite block round-trips as never", func(t *testing.T) {
		reset(t)

		require.NoError(t, repo.SetBlocked(ctx, 7, models.Never()))

		record, err := repo.GetRecord(ctx, 7)
		require.NoError(t, err)
		assert.True(t, record.Blocked)
		assert.True(t, record.ExpiresAt.IsNever())
	})

	t.Run("re-block overwrites expiration", func(t *testing.T) {
		reset(t)

		require.NoError(t, repo.SetBlocked(ctx, 42, models.Never()))
		later := models.At(now.Add(time.Hour))
		require.NoError(t, repo.SetBlocked(ctx, 42, later))

		record, err := repo.GetRecord(ctx, 42)
		require.NoError(t, err)
		assert.True(t, record.ExpiresAt.Equal(later))
	})

	t.Run("clear reports whether a record existed", func(t *testing.T) {
		reset(t)

		require.NoError(t, repo.SetBlocked(ctx, 42, models.Never()))

		existed, err := repo.ClearBlocked(ctx, 42)
		require.NoError(t, err)
		assert.True(t, existed)

		existed, err = repo.ClearBlocked(ctx, 42)
		require.NoError(t, err)
		assert.False(t, existed)

		record, err := repo.GetRecord(ctx, 42)
		require.NoError(t, err)
		assert.True(t, record.IsZero())
	})

	t.Run("list excludes expired and cleared users", func(t *testing.T) {
		reset(t)

		require.NoError(t, repo.SetBlocked(ctx, 30, models.At(now.Add(time.Hour))))
		require.NoError(t, repo.SetBlocked(ctx, 10, models.Never()))
		require.NoError(t, repo.SetBlocked(ctx, 20, models.At(now.Add(-time.Minute))))
		require.NoError(t, repo.SetBlocked(ctx, 40, models.Never()))
		_, err := repo.ClearBlocked(ctx, 40)
		require.NoError(t, err)

		ids, err := repo.ListBlockedUserIDs(ctx, now, 0)
		require.NoError(t, err)
		assert.Equal(t, []int64{10, 30}, ids)
	})

	t.Run("list honours buffer", func(t *testing.T) {
		reset(t)

		require.NoError(t, repo.SetBlocked(ctx, 5, models.At(now.Add(-5*time.Second))))

		ids, err := repo.ListBlockedUserIDs(ctx, now, 0)
		require.NoError(t, err)
		assert.Empty(t, ids)

		ids, err = repo.ListBlockedUserIDs(ctx, now, 10*time.Second)
		require.NoError(t, err)
		assert.Equal(t, []int64{5}, ids)
	})

	t.Run("expiration equal to now is excluded", func(t *testing.T) {
		reset(t)

		require.NoError(t, repo.SetBlocked(ctx, 5, models.At(now)))

		ids, err := repo.ListBlockedUserIDs(ctx, now, 0)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("empty store lists nothing", func(t *testing.T) {
		reset(t)

		ids, err := repo.ListBlockedUserIDs(ctx, now, 0)
		require.NoError(t, err)
		assert.NotNil(t, ids)
		assert.Empty(t, ids)
	})

	t.Run("invalid user ids are rejected", func(t *testing.T) {
		for _, id := range []int64{0, -1} {
			_, err := repo.GetRecord(ctx, id)
			assert.ErrorIs(t, err, ErrInvalidUserID)

			assert.ErrorIs(t, repo.SetBlocked(ctx, id, models.Never()), ErrInvalidUserID)

			existed, err := repo.ClearBlocked(ctx, id)
			assert.ErrorIs(t, err, ErrInvalidUserID)
			assert.False(t, existed)
		}
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, repo.Ping(ctx))
	})
}
