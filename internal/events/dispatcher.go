package events

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/ciplastic/support-tickets/internal/persistence"
)

// Channel is the Redis pub/sub channel mirrored events are published on.
const Channel = "tickets.events"

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher interface allows event publication/subscription.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// dispatcher fans events out to in-process handlers synchronously and mirrors
// each event to a Redis channel for out-of-band consumers.
type dispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
	redis     *persistence.Redis
	logger    *zap.Logger
}

// NewDispatcher creates a dispatcher instance. redis may be nil; mirroring is
// best effort.
func NewDispatcher(redis *persistence.Redis, logger *zap.Logger) Dispatcher {
	return &dispatcher{
		listeners: make(map[EventType][]EventHandler),
		redis:     redis,
		logger:    logger,
	}
}

// Publish synchronously invokes handlers for the given event, then mirrors it.
func (d *dispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	handlers := append([]EventHandler{}, d.listeners[event.Type]...)
	d.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			d.logger.Warn("event handler failed",
				zap.String("event_type", string(event.Type)),
				zap.String("ticket_id", event.TicketID),
				zap.Error(err))
		}
	}

	if d.redis != nil {
		payload, err := json.Marshal(event)
		if err != nil {
			return err
		}
		if err := d.redis.Publish(ctx, Channel, payload); err != nil {
			d.logger.Warn("event mirror publish failed", zap.Error(err))
		}
	}
	return nil
}

// Subscribe registers a handler for the given event type.
func (d *dispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}
