// Package eventbus provides in-memory and Kafka-backed implementations of
// the event bus contract.
package eventbus

import (
	"context"
	"log/slog"
	"sync"

	"github.com/amirasaad/tokenx/pkg/domain/common"
	"github.com/amirasaad/tokenx/pkg/eventbus"
)

// MemoryEventBus is a simple in-memory implementation of the Bus interface.
type MemoryEventBus struct {
	mu        sync.RWMutex
	handlers  map[string][]eventbus.HandlerFunc
	published []common.Event
	logger    *slog.Logger
}

// NewWithMemory creates a new in-memory event bus.
func NewWithMemory(logger *slog.Logger) *MemoryEventBus {
	return &MemoryEventBus{
		handlers: make(map[string][]eventbus.HandlerFunc),
		logger:   logger.With("bus", "memory"),
	}
}

// Subscribe registers a handler for a specific event type.
func (b *MemoryEventBus) Subscribe(eventType string, handler eventbus.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish dispatches the event to all registered handlers for its type.
func (b *MemoryEventBus) Publish(ctx context.Context, event common.Event) error {
	b.mu.RLock()
	handlers := b.handlers[event.Type()]
	b.mu.RUnlock()

	b.mu.Lock()
	b.published = append(b.published, event)
	b.mu.Unlock()

	for _, handler := range handlers {
		handler(ctx, event)
	}
	return nil
}

// Published returns every event published so far. Test helper.
func (b *MemoryEventBus) Published() []common.Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]common.Event, len(b.published))
	copy(out, b.published)
	return out
}

// ClearPublished clears the captured events. Test helper.
func (b *MemoryEventBus) ClearPublished() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = nil
}
