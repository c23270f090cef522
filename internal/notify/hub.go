// Package notify fans domain events out to connected WebSocket clients.
package notify

import (
	"log/slog"
	"sync"
	"time"
)

// Event is a domain event pushed to subscribers
type Event struct {
	Type       string    `json:"type"` // lease.created, lease.ended, lease.activated, payment.created, payments.generated, payment.paid
	ResourceID int64     `json:"resource_id"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Hub is a mutex-guarded fan-out of events to subscriber channels. Slow
// subscribers drop events rather than blocking publishers.
type Hub struct {
	mu     sync.RWMutex
	subs   map[chan Event]struct{}
	logger *slog.Logger
}

// NewHub creates an event hub
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subs:   make(map[chan Event]struct{}),
		logger: logger,
	}
}

// Subscribe registers a new subscriber and returns its channel plus an
// unsubscribe function
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
}

// Publish delivers an event to every subscriber without blocking. A nil hub
// is a no-op so services can run without one in tests.
func (h *Hub) Publish(eventType string, resourceID int64, message string) {
	if h == nil {
		return
	}

	event := Event{
		Type:       eventType,
		ResourceID: resourceID,
		Message:    message,
		OccurredAt: time.Now().UTC(),
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- event:
		default:
			h.logger.Debug("dropping event for slow subscriber", slog.String("type", event.Type))
		}
	}
}

// SubscriberCount returns the number of connected subscribers
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
