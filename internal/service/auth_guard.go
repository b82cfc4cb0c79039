package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/memberguard/block-registry/internal/models"
	"github.com/memberguard/block-registry/internal/session"
	"github.com/memberguard/block-registry/pkg/logger"
)

// StatusReader is the part of the registry the guards need.
type StatusReader interface {
	Status(ctx context.Context, userID int64) (models.BlockStatus, error)
}

// AuthGuard rejects blocked accounts at login and on every authenticated request.
type AuthGuard struct {
	registry StatusReader
	sessions session.Store
	manager  session.Manager
	ttl      time.Duration
}

// NewAuthGuard creates a new AuthGuard. When sessions is also a
// session.Manager the guard issues tokens on login, valid for ttl, and
// resolves them on session checks.
func NewAuthGuard(registry StatusReader, sessions session.Store, ttl time.Duration) *AuthGuard {
	manager, _ := sessions.(session.Manager)
	return &AuthGuard{
		registry: registry,
		sessions: sessions,
		manager:  manager,
		ttl:      ttl,
	}
}

// ManagesSessions reports whether the guard issues its own session tokens.
func (g *AuthGuard) ManagesSessions() bool {
	return g.manager != nil
}

// Login runs CheckLogin and opens a session for an allowed user. The token is
// empty when sessions live in the host.
func (g *AuthGuard) Login(ctx context.Context, userID int64) (string, error) {
	if err := g.CheckLogin(ctx, userID); err != nil {
		return "", err
	}
	if g.manager == nil {
		return "", nil
	}

	token, err := g.manager.Create(ctx, userID, g.ttl)
	if err != nil {
		return "", fmt.Errorf("open session for user %d: %w", userID, err)
	}

	logger.L().Debug("Opened session", logger.UserID(userID))
	return token, nil
}

// CheckToken resolves a session token and runs CheckSession for its owner.
func (g *AuthGuard) CheckToken(ctx context.Context, token string) (int64, error) {
	if g.manager == nil {
		return 0, ErrSessionsUnmanaged
	}

	userID, ok, err := g.manager.Lookup(ctx, token)
	if err != nil {
		return 0, fmt.Errorf("resolve session: %w", err)
	}
	if !ok {
		return 0, session.ErrSessionNotFound
	}

	return userID, g.CheckSession(ctx, userID)
}

// CheckLogin runs after the host has verified the user's credentials. It
// returns a *BlockedError when the account is blocked.
func (g *AuthGuard) CheckLogin(ctx context.Context, userID int64) error {
	status, err := g.registry.Status(ctx, userID)
	if err != nil {
		return fmt.Errorf("check login for user %d: %w", userID, err)
	}
	if !status.Blocked {
		return nil
	}

	logger.L().Info("Rejected login for blocked user",
		logger.UserID(userID),
		zap.String("kind", string(status.Kind)),
	)
	return blockedError(status)
}

// CheckSession is CheckLogin for an already authenticated session. A blocked
// user's sessions are destroyed so the host forces re-authentication.
func (g *AuthGuard) CheckSession(ctx context.Context, userID int64) error {
	status, err := g.registry.Status(ctx, userID)
	if err != nil {
		return fmt.Errorf("check session for user %d: %w", userID, err)
	}
	if !status.Blocked {
		return nil
	}

	if err := g.sessions.DestroyAll(ctx, userID); err != nil {
		logger.L().Error("Failed to destroy sessions of blocked user",
			zap.Error(err),
			logger.UserID(userID),
		)
		return fmt.Errorf("check session for user %d: %w: %w", userID, ErrSessionInvalidation, err)
	}

	logger.L().Info("Ended live session of blocked user", logger.UserID(userID))
	return blockedError(status)
}

func blockedError(status models.BlockStatus) *BlockedError {
	return &BlockedError{
		UserID:    status.UserID,
		Kind:      status.Kind,
		ExpiresAt: status.ExpiresAt,
	}
}
