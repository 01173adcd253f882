// Package bus carries archiver lifecycle events, either to in-process
// subscribers or to a NATS server.
package bus

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is the envelope for every lifecycle event. Data holds the
// event-specific fields under snake_case keys.
type Event struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Source     string         `json:"source"`
	OccurredAt time.Time      `json:"occurred_at"`
	Data       map[string]any `json:"data,omitempty"`
}

// NewEvent stamps a fresh ID and the current UTC time on an event.
func NewEvent(eventType, source string, data map[string]any) *Event {
	return &Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Source:     source,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

// EventHandler consumes one delivered event.
type EventHandler func(ctx context.Context, event *Event) error

// Subscription is a live registration returned by Subscribe.
type Subscription interface {
	Unsubscribe() error
	IsValid() bool
}

// Publisher is the write side of a bus.
type Publisher interface {
	Publish(ctx context.Context, subject string, event *Event) error
}

// EventBus is a Publisher that also accepts subscriptions and owns a connection.
type EventBus interface {
	Publisher

	// Subscribe registers handler for subject. NATS wildcards are supported.
	Subscribe(subject string, handler EventHandler) (Subscription, error)

	// Close releases the bus. Pending publishes are delivered first where the
	// transport allows it.
	Close()

	IsConnected() bool
}
