package service

import (
	"context"
	"fmt"
	"time"

	"github.com/memberguard/block-registry/internal/cache"
	"github.com/memberguard/block-registry/internal/events"
	"github.com/memberguard/block-registry/internal/metrics"
	"github.com/memberguard/block-registry/internal/models"
	"github.com/memberguard/block-registry/internal/policy"
	"github.com/memberguard/block-registry/internal/repository"
	"github.com/memberguard/block-registry/internal/session"
)

// Registry is the block registry as seen by moderation and the HTTP layer.
type Registry interface {
	Block(ctx context.Context, userID int64, length int, unit policy.Unit) (bool, error)
	Unblock(ctx context.Context, userID int64) (bool, error)
	IsBlocked(ctx context.Context, userID int64) (bool, error)
	Status(ctx context.Context, userID int64) (models.BlockStatus, error)
	ListBlockedUserIDs(ctx context.Context) ([]int64, error)
	UnblockAll(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
}

// BlockRegistry owns block state: it writes records, revokes sessions on
// block, keeps the blocked-set cache coherent and publishes lifecycle events.
// It never logs; every failure is returned.
type BlockRegistry struct {
	repo       repository.BlockRepository
	cache      cache.BlockedSetCache
	sessions   session.Store
	publisher  events.Publisher
	metrics    *metrics.Metrics
	now        func() time.Time
	listBuffer time.Duration
}

// Option configures a BlockRegistry.
type Option func(*BlockRegistry)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *BlockRegistry) { r.now = now }
}

// WithListBuffer widens the blocked-users query to include blocks that
// expired less than buffer ago.
func WithListBuffer(buffer time.Duration) Option {
	return func(r *BlockRegistry) { r.listBuffer = buffer }
}

// WithMetrics records operation outcomes and cache lookups.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *BlockRegistry) { r.metrics = m }
}

// NewBlockRegistry creates a BlockRegistry. A nil publisher drops events.
func NewBlockRegistry(
	repo repository.BlockRepository,
	blockedSet cache.BlockedSetCache,
	sessions session.Store,
	publisher events.Publisher,
	opts ...Option,
) *BlockRegistry {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	r := &BlockRegistry{
		repo:      repo,
		cache:     blockedSet,
		sessions:  sessions,
		publisher: publisher,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Block marks userID blocked for length units (indefinitely when length <= 0
// or unit is indefinite), revokes the user's sessions and invalidates the
// blocked set. It returns true only when every step succeeded.
func (r *BlockRegistry) Block(ctx context.Context, userID int64, length int, unit policy.Unit) (ok bool, err error) {
	defer func() { r.observe("block", err) }()

	if err := repository.ValidateUserID(userID); err != nil {
		return false, err
	}

	now := r.now()
	exp := policy.ComputeExpiration(length, unit, now)

	if err := r.repo.SetBlocked(ctx, userID, exp); err != nil {
		return false, fmt.Errorf("block user %d: %w", userID, err)
	}

	sessionErr := r.sessions.DestroyAll(ctx, userID)

	// the record is persisted either way, so the cached set is stale either way
	if err := r.cache.Invalidate(ctx); err != nil {
		return false, fmt.Errorf("block user %d: invalidate blocked set: %w", userID, err)
	}

	if sessionErr != nil {
		return false, fmt.Errorf("block user %d: %w: %w", userID, ErrSessionInvalidation, sessionErr)
	}

	event := events.NewEvent(events.HookAfterBlock, userID, now)
	event.Success = true
	event.ExpiresAt = exp
	r.publisher.Publish(ctx, event)

	return true, nil
}

// Unblock clears the user's record and reports whether one existed.
// Unblocking a user who is not blocked is a successful no-op.
func (r *BlockRegistry) Unblock(ctx context.Context, userID int64) (existed bool, err error) {
	defer func() { r.observe("unblock", err) }()

	if err := repository.ValidateUserID(userID); err != nil {
		return false, err
	}

	existed, err = r.repo.ClearBlocked(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("unblock user %d: %w", userID, err)
	}

	if err := r.cache.Invalidate(ctx); err != nil {
		return false, fmt.Errorf("unblock user %d: invalidate blocked set: %w", userID, err)
	}

	event := events.NewEvent(events.HookAfterUnblock, userID, r.now())
	event.Success = existed
	r.publisher.Publish(ctx, event)

	return existed, nil
}

// IsBlocked reads the user's record. A block whose expiration has passed is
// cleared on the spot and reported as not blocked. The blocked-set cache is
// not consulted.
func (r *BlockRegistry) IsBlocked(ctx context.Context, userID int64) (bool, error) {
	_, blocked, err := r.current(ctx, userID)
	return blocked, err
}

// GetRecord returns the raw stored record, expired or not.
func (r *BlockRegistry) GetRecord(ctx context.Context, userID int64) (models.BlockRecord, error) {
	record, err := r.repo.GetRecord(ctx, userID)
	if err != nil {
		return record, fmt.Errorf("get record for user %d: %w", userID, err)
	}
	return record, nil
}

// Status reports whether the user is blocked and how.
func (r *BlockRegistry) Status(ctx context.Context, userID int64) (models.BlockStatus, error) {
	status := models.BlockStatus{UserID: userID, Kind: models.BlockKindNone}

	record, blocked, err := r.current(ctx, userID)
	if err != nil || !blocked {
		return status, err
	}

	status.Blocked = true
	status.Kind = record.Kind()
	status.ExpiresAt = record.ExpiresAt
	return status, nil
}

// ListBlockedUserIDs returns the ids of every currently blocked user, served
// from the blocked-set cache when it holds an entry.
func (r *BlockRegistry) ListBlockedUserIDs(ctx context.Context) (ids []int64, err error) {
	defer func() { r.observe("list", err) }()

	ids, hit, err := r.cache.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("read blocked set: %w", err)
	}
	if r.metrics != nil {
		r.metrics.ObserveCacheLookup(hit)
	}
	if hit {
		return ids, nil
	}

	ids, err = r.repo.ListBlockedUserIDs(ctx, r.now(), r.listBuffer)
	if err != nil {
		return nil, fmt.Errorf("list blocked users: %w", err)
	}

	if err := r.cache.Set(ctx, ids); err != nil {
		return nil, fmt.Errorf("write blocked set: %w", err)
	}

	return append([]int64{}, ids...), nil
}

// UnblockAll unblocks every currently blocked user, read fresh from the
// store, and returns how many records were cleared. On error the count
// covers the users unblocked so far.
func (r *BlockRegistry) UnblockAll(ctx context.Context) (int, error) {
	ids, err := r.repo.ListBlockedUserIDs(ctx, r.now(), 0)
	if err != nil {
		return 0, fmt.Errorf("unblock all: %w", err)
	}

	count := 0
	for _, id := range ids {
		existed, err := r.Unblock(ctx, id)
		if err != nil {
			return count, fmt.Errorf("unblock all: %w", err)
		}
		if existed {
			count++
		}
	}
	return count, nil
}

// Ping checks the state store.
func (r *BlockRegistry) Ping(ctx context.Context) error {
	return r.repo.Ping(ctx)
}

// current loads the record and applies lazy expiry.
func (r *BlockRegistry) current(ctx context.Context, userID int64) (models.BlockRecord, bool, error) {
	if repository.ValidateUserID(userID) != nil {
		return models.BlockRecord{UserID: userID}, false, nil
	}

	record, err := r.repo.GetRecord(ctx, userID)
	if err != nil {
		return record, false, fmt.Errorf("check block for user %d: %w", userID, err)
	}
	if !record.Blocked {
		return record, false, nil
	}

	if policy.IsExpired(record.ExpiresAt, r.now()) {
		if _, err := r.Unblock(ctx, userID); err != nil {
			return record, false, fmt.Errorf("expire block for user %d: %w", userID, err)
		}
		return models.BlockRecord{UserID: userID}, false, nil
	}

	return record, true, nil
}

func (r *BlockRegistry) observe(operation string, err error) {
	if r.metrics != nil {
		r.metrics.ObserveOperation(operation, err)
	}
}
