package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/memberguard/block-registry/internal/models"
	"github.com/memberguard/block-registry/internal/policy"
)

// MemoryBlockRepository is a process-local BlockRepository.
type MemoryBlockRepository struct {
	mu      sync.RWMutex
	records map[int64]models.BlockRecord
}

// NewMemoryBlockRepository creates an empty MemoryBlockRepository.
func NewMemoryBlockRepository() *MemoryBlockRepository {
	return &MemoryBlockRepository{records: make(map[int64]models.BlockRecord)}
}

func (r *MemoryBlockRepository) GetRecord(_ context.Context, userID int64) (models.BlockRecord, error) {
	if err := ValidateUserID(userID); err != nil {
		return models.BlockRecord{UserID: userID}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[userID]
	if !ok {
		return models.BlockRecord{UserID: userID}, nil
	}
	return record, nil
}

func (r *MemoryBlockRepository) SetBlocked(_ context.Context, userID int64, exp models.Expiration) error {
	if err := ValidateUserID(userID); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[userID] = models.BlockRecord{UserID: userID, Blocked: true, ExpiresAt: exp}
	return nil
}

func (r *MemoryBlockRepository) ClearBlocked(_ context.Context, userID int64) (bool, error) {
	if err := ValidateUserID(userID); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, existed := r.records[userID]
	delete(r.records, userID)
	return existed, nil
}

func (r *MemoryBlockRepository) ListBlockedUserIDs(_ context.Context, now time.Time, buffer time.Duration) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	userIDs := make([]int64, 0, len(r.records))
	for id, record := range r.records {
		if record.Blocked && !policy.IsExpiredWithBuffer(record.ExpiresAt, now, buffer) {
			userIDs = append(userIDs, id)
		}
	}
	sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })
	return userIDs, nil
}

func (r *MemoryBlockRepository) Ping(context.Context) error {
	return nil
}
