package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/memberguard/block-registry/internal/events"
	"github.com/memberguard/block-registry/pkg/logger"
)

// BlockChecker is the part of the registry the notification guard needs.
type BlockChecker interface {
	IsBlocked(ctx context.Context, userID int64) (bool, error)
}

// NotificationGuard withholds selected notification kinds from blocked users.
type NotificationGuard struct {
	checker   BlockChecker
	keys      map[string]struct{}
	publisher events.Publisher
	now       func() time.Time
}

// NewNotificationGuard creates a guard for the given notification keys.
// A nil publisher drops decision events.
func NewNotificationGuard(checker BlockChecker, keys []string, publisher events.Publisher) *NotificationGuard {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	set := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		set[key] = struct{}{}
	}
	return &NotificationGuard{
		checker:   checker,
		keys:      set,
		publisher: publisher,
		now:       time.Now,
	}
}

// Guards reports whether key is subject to suppression.
func (g *NotificationGuard) Guards(key string) bool {
	_, ok := g.keys[key]
	return ok
}

// AllowDispatch decides whether a notification of kind key may be sent to
// userID. Keys outside the guarded set and invalid ids are allowed without
// reading the store.
func (g *NotificationGuard) AllowDispatch(ctx context.Context, userID int64, key string) (bool, error) {
	if userID <= 0 || !g.Guards(key) {
		return true, nil
	}

	blocked, err := g.checker.IsBlocked(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("check notification %s for user %d: %w", key, userID, err)
	}

	event := events.NewEvent(events.HookBeforeNotificationDispatch, userID, g.now())
	event.NotificationKey = key
	event.Suppressed = blocked
	event.Success = true
	g.publisher.Publish(ctx, event)

	if blocked {
		logger.L().Debug("Suppressed notification for blocked user",
			logger.UserID(userID),
			zap.String("key", key),
		)
	}
	return !blocked, nil
}
