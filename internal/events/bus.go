// Package events provides a small in-process publish/subscribe bus.
// Handlers run synchronously on the emitting goroutine; anything slow
// (like pushing to a websocket client) must hand off to its own channel.
package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventType identifies a kind of event on the bus
type EventType string

const (
	// EntrySaved fires after a daily entry is computed and persisted
	EntrySaved EventType = "entry_saved"
	// StoreReset fires after the whole store has been wiped
	StoreReset EventType = "store_reset"
	// BackupCompleted fires after a backup run finishes successfully
	BackupCompleted EventType = "backup_completed"
)

// Event is one published occurrence
type Event struct {
	Type      EventType              `json:"type"`
	Module    string                 `json:"module"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Handler receives published events
type Handler func(*Event)

// Bus fans events out to subscribed handlers
type Bus struct {
	mu          sync.RWMutex
	handlers    map[EventType][]Handler
	allHandlers []Handler
	log         zerolog.Logger
}

// NewBus creates a new event bus
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
		log:      log.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe registers a handler for one event type.
// Subscriptions are append-only; there is no unsubscribe.
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// SubscribeAll registers a handler for every event type
func (b *Bus) SubscribeAll(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.allHandlers = append(b.allHandlers, handler)
}

// Emit publishes an event to all matching handlers
func (b *Bus) Emit(eventType EventType, module string, data map[string]interface{}) {
	event := &Event{
		Type:      eventType,
		Module:    module,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	b.mu.RLock()
	typed := b.handlers[eventType]
	all := b.allHandlers
	b.mu.RUnlock()

	b.log.Debug().
		Str("event_type", string(eventType)).
		Str("module", module).
		Int("handlers", len(typed)+len(all)).
		Msg("Emitting event")

	for _, handler := range typed {
		handler(event)
	}
	for _, handler := range all {
		handler(event)
	}
}
