package service

import (
	"errors"
	"fmt"

	"github.com/memberguard/block-registry/internal/models"
	"github.com/memberguard/block-registry/internal/repository"
)

var (
	// ErrInvalidUserID is returned for user ids that cannot name an account.
	ErrInvalidUserID = repository.ErrInvalidUserID

	// ErrSessionInvalidation means the block was persisted but the user's
	// sessions could not be revoked, so the block is not reported effective.
	ErrSessionInvalidation = errors.New("session invalidation failed")

	// ErrForbidden is returned when the actor may not moderate users.
	ErrForbidden = errors.New("actor is not allowed to moderate users")

	// ErrSelfBlock is returned when an actor targets their own account.
	ErrSelfBlock = errors.New("users cannot block themselves")

	// ErrProtectedUser is returned when the target is exempt from blocking.
	ErrProtectedUser = errors.New("user is protected from blocking")

	// ErrSessionsUnmanaged is returned for token checks when sessions live in the host.
	ErrSessionsUnmanaged = errors.New("session tokens are not issued by this service")
)

// ValidationError represents a request that failed validation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ProcessingError represents an error that occurred while applying a moderation action.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ProcessingError struct {
	Message string
	Cause   error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *ProcessingError) Unwrap() error {
	return e.Cause
}

// Login and session-check messages.
const (
	MessageBlocked          = "This account has been blocked."
	MessageTemporaryBlocked = "This account has been temporarily blocked."
)

// Error codes returned to authentication clients.
const (
	CodeBlocked          = "blocked"
	CodeBlockedTemporary = "blocked_temporary"
)

// BlockedError rejects an authenticated principal whose account is blocked.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type BlockedError struct {
	UserID    int64
	Kind      models.BlockKind
	ExpiresAt models.Expiration
}

func (e *BlockedError) Error() string {
	if e.Kind == models.BlockKindTemporary {
		return MessageTemporaryBlocked
	}
	return MessageBlocked
}

// Code distinguishes indefinite from temporary blocks for clients.
func (e *BlockedError) Code() string {
	if e.Kind == models.BlockKindTemporary {
		return CodeBlockedTemporary
	}
	return CodeBlocked
}

// IsBlockedError reports whether err is, or wraps, a *BlockedError.
func IsBlockedError(err error) (*BlockedError, bool) {
	var blocked *BlockedError
	if errors.As(err, &blocked) {
		return blocked, true
	}
	return nil, false
}
