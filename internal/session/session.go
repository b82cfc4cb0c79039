// Package session tracks authenticated sessions so they can be revoked when an
// account is blocked.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound is returned for a token that is unknown or has expired.
var ErrSessionNotFound = errors.New("session not found")

// Store is the capability the block registry needs: revoke every session of a user.
type Store interface {
	DestroyAll(ctx context.Context, userID int64) error
}

// Manager is a Store that can also issue and resolve sessions.
type Manager interface {
	Store
	Create(ctx context.Context, userID int64, ttl time.Duration) (string, error)
	Lookup(ctx context.Context, token string) (int64, bool, error)
}

// NopStore is used when sessions live in an external system. DestroyAll always succeeds.
type NopStore struct{}

// DestroyAll does nothing.
func (NopStore) DestroyAll(context.Context, int64) error { return nil }
