package events

import (
	"encoding/json"
	"sync"
	"time"

	"itscare/internal/models"
)

const (
	EventBookingCreated     = "booking_created"
	EventBookingUpdated     = "booking_updated"
	EventBookingDeleted     = "booking_deleted"
	EventBookingPaidToggled = "booking_paid_toggled"
	EventBookingsImported   = "bookings_imported"
	EventBookingsCleared    = "bookings_cleared"
)

// BookingEventPayload is the minimal booking snapshot carried by a
// single-record event.
type BookingEventPayload struct {
	BookingID  string            `json:"booking_id"`
	Customer   string            `json:"customer"`
	BookDate   string            `json:"book_date"`
	Engineer   string            `json:"engineer,omitempty"`
	Contractor string            `json:"contractor,omitempty"`
	Paid       models.PaidStatus `json:"paid,omitempty"`
}

// ImportEventPayload reports a completed CSV import batch.
type ImportEventPayload struct {
	Accepted int `json:"accepted"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
