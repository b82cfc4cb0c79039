// Package repository persists per-user block records.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/memberguard/block-registry/internal/models"
)

// ErrInvalidUserID is returned for user ids that cannot name an account.
var ErrInvalidUserID = errors.New("invalid user id")

// BlockRepository is the state store for block records. SetBlocked writes the
// flag and expiration as one record; readers never see one without the other.
type BlockRepository interface {
	// GetRecord returns the stored record. An absent record is a zero record, not an error.
	GetRecord(ctx context.Context, userID int64) (models.BlockRecord, error)
	// SetBlocked marks the user blocked until exp, overwriting any previous record.
	SetBlocked(ctx context.Context, userID int64, exp models.Expiration) error
	// ClearBlocked removes the record and reports whether one existed.
	ClearBlocked(ctx context.Context, userID int64) (bool, error)
	// ListBlockedUserIDs returns, ascending, every blocked user whose expiration
	// is Never or later than now minus buffer.
	ListBlockedUserIDs(ctx context.Context, now time.Time, buffer time.Duration) ([]int64, error)
	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
}

// ValidateUserID rejects ids that cannot name an account.
func ValidateUserID(userID int64) error {
	if userID <= 0 {
		return ErrInvalidUserID
	}
	return nil
}
