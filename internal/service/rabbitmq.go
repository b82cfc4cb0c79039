package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/memberguard/block-registry/internal/config"
	"github.com/memberguard/block-registry/internal/events"
	"github.com/memberguard/block-registry/pkg/logger"
)

// EventPublisher forwards block lifecycle events to a RabbitMQ topic exchange
// with publisher confirms.
type EventPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	config  *config.RabbitMQConfig
	mu      sync.RWMutex
}

// NewEventPublisher connects to RabbitMQ and declares the exchange and audit queue.
func NewEventPublisher(cfg *config.RabbitMQConfig) (*EventPublisher, error) {
	ep := &EventPublisher{
		config: cfg,
	}

	if err := ep.connect(); err != nil {
		return nil, err
	}

	return ep, nil
}

func (ep *EventPublisher) connect() error {
	ep.mu.Lock()
	defer ep.mu.Unlock()

	conn, err := amqp.Dial(ep.config.URL())
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	fail := func(format string, err error) error {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf(format, err)
	}

	if err := ch.Confirm(false); err != nil {
		return fail("failed to enable publisher confirms: %w", err)
	}

	if err := ch.ExchangeDeclare(
		ep.config.Exchange, // name
		"topic",            // type
		true,               // durable
		false,              // auto-deleted
		false,              // internal
		false,              // no-wait
		nil,                // arguments
	); err != nil {
		return fail("failed to declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(
		ep.config.Queue, // name
		true,            // durable
		false,           // delete when unused
		false,           // exclusive
		false,           // no-wait
		amqp.Table{
			"x-message-ttl": 7 * 86400000, // 7 days
			"x-max-length":  100000,
		},
	); err != nil {
		return fail("failed to declare queue: %w", err)
	}

	for _, key := range []string{ep.config.BlockedRoutingKey, ep.config.UnblockedRoutingKey} {
		if err := ch.QueueBind(ep.config.Queue, key, ep.config.Exchange, false, nil); err != nil {
			return fail("failed to bind queue: %w", err)
		}
	}

	ep.conn = conn
	ep.channel = ch

	logger.L().Info("Connected to RabbitMQ",
		zap.String("exchange", ep.config.Exchange),
		zap.String("queue", ep.config.Queue),
	)

	return nil
}

// RoutingKey maps a hook to its routing key. Hooks that are not forwarded report false.
func (ep *EventPublisher) RoutingKey(hook events.Hook) (string, bool) {
	switch hook {
	case events.HookAfterBlock:
		return ep.config.BlockedRoutingKey, true
	case events.HookAfterUnblock:
		return ep.config.UnblockedRoutingKey, true
	default:
		return "", false
	}
}

// PublishEvent sends event and waits for the broker's confirmation.
func (ep *EventPublisher) PublishEvent(ctx context.Context, event events.Event) error {
	routingKey, ok := ep.RoutingKey(event.Hook)
	if !ok {
		return nil
	}

	ep.mu.RLock()
	defer ep.mu.RUnlock()

	if ep.channel == nil {
		return fmt.Errorf("channel is not initialized")
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	confirms := ep.channel.NotifyPublish(make(chan amqp.Confirmation, 1))

	err = ep.channel.PublishWithContext(
		ctx,
		ep.config.Exchange, // exchange
		routingKey,         // routing key
		false,              // mandatory
		false,              // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt,
			MessageId:    event.ID.String(),
			Type:         string(event.Hook),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	timeout := ep.config.ConfirmTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	select {
	case confirm := <-confirms:
		if !confirm.Ack {
			return fmt.Errorf("message was not acknowledged by broker")
		}
	case <-time.After(timeout):
		return fmt.Errorf("timeout waiting for publish confirmation")
	case <-ctx.Done():
		return ctx.Err()
	}

	logger.L().Debug("Published event to RabbitMQ",
		zap.String("eventId", event.ID.String()),
		zap.String("routingKey", routingKey),
		logger.UserID(event.UserID),
	)

	return nil
}

// Subscribe forwards the bus's block and unblock events to RabbitMQ.
func (ep *EventPublisher) Subscribe(bus *events.Bus) {
	bus.Subscribe(events.HookAfterBlock, ep.PublishEvent)
	bus.Subscribe(events.HookAfterUnblock, ep.PublishEvent)
}

// Close closes the channel and connection.
func (ep *EventPublisher) Close() error {
	ep.mu.Lock()
	defer ep.mu.Unlock()

	var errs []error
	if ep.channel != nil {
		if err := ep.channel.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if ep.conn != nil {
		if err := ep.conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing publisher: %w", errors.Join(errs...))
	}

	logger.L().Info("RabbitMQ publisher closed")
	return nil
}

// IsHealthy reports whether the connection and channel are open.
func (ep *EventPublisher) IsHealthy() bool {
	ep.mu.RLock()
	defer ep.mu.RUnlock()

	return ep.conn != nil && !ep.conn.IsClosed() && ep.channel != nil
}
