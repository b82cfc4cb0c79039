// Package events is the ordered observer list that block lifecycle changes
// and notification decisions are published to.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/memberguard/block-registry/internal/models"
	"github.com/memberguard/block-registry/pkg/logger"
)

// Hook names an extension point.
type Hook string

// Extension points.
const (
	HookAfterBlock                 Hook = "after_block"
	HookAfterUnblock               Hook = "after_unblock"
	HookBeforeNotificationDispatch Hook = "before_notification_dispatch"
)

// Event is the payload delivered to listeners. Fields that do not apply to a
// hook are left zero.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Event struct {
	ID              uuid.UUID         `json:"id"`
	Hook            Hook              `json:"hook"`
	UserID          int64             `json:"user_id"`
	Success         bool              `json:"success"`
	ExpiresAt       models.Expiration `json:"expires_at"`
	NotificationKey string            `json:"notification_key,omitempty"`
	Suppressed      bool              `json:"suppressed,omitempty"`
	OccurredAt      time.Time         `json:"occurred_at"`
}

// NewEvent stamps an event with a fresh id.
func NewEvent(hook Hook, userID int64, occurredAt time.Time) Event {
	return Event{
		ID:         uuid.New(),
		Hook:       hook,
		UserID:     userID,
		OccurredAt: occurredAt.UTC(),
	}
}

// Listener handles an event. A returned error is logged and does not stop
// the remaining listeners.
type Listener func(ctx context.Context, event Event) error

// Publisher is what producers of events depend on.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Bus dispatches events to listeners in registration order.
type Bus struct {
	listeners map[Hook][]Listener
	log       *zap.Logger
	mu        sync.RWMutex
}

// NewBus creates an empty Bus. A nil log uses the process logger.
func NewBus(log *zap.Logger) *Bus {
	if log == nil {
		log = logger.L()
	}
	return &Bus{
		listeners: make(map[Hook][]Listener),
		log:       log,
	}
}

// Subscribe appends a listener for hook.
func (b *Bus) Subscribe(hook Hook, listener Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[hook] = append(b.listeners[hook], listener)
}

// Publish calls every listener of event.Hook sequentially on a snapshot of
// the listener list, so listeners may subscribe without deadlocking.
func (b *Bus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	listeners := make([]Listener, len(b.listeners[event.Hook]))
	copy(listeners, b.listeners[event.Hook])
	b.mu.RUnlock()

	for i, listener := range listeners {
		if err := listener(ctx, event); err != nil {
			b.log.Warn("Event listener failed",
				zap.Error(err),
				zap.String("hook", string(event.Hook)),
				zap.Int("listener", i),
				zap.String("eventId", event.ID.String()),
				logger.UserID(event.UserID),
			)
		}
	}
}

// ListenerCount returns the number of listeners registered for hook.
func (b *Bus) ListenerCount(hook Hook) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[hook])
}

// NopPublisher drops every event.
type NopPublisher struct{}

// Publish does nothing.
func (NopPublisher) Publish(context.Context, Event) {}
