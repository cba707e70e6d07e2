package events

import (
	"encoding/json"
	"sync"
	"time"

	"cab_booking/internal/model"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingConfirmed = "booking_confirmed"
	EventBookingCompleted = "booking_completed"
	EventBookingCancelled = "booking_cancelled"
)

// StatusEvent maps a booking status onto its event type
func StatusEvent(status model.BookingStatus) string {
	return "booking_" + string(status)
}

// BookingEventPayload describes the minimal booking snapshot for event consumers.
type BookingEventPayload struct {
	BookingID  string    `json:"booking_id"`
	UserID     string    `json:"user_id"`
	CabID      string    `json:"cab_id"`
	Status     string    `json:"status"`
	TotalPrice float64   `json:"total_price"`
	Date       time.Time `json:"date"`
	ChangedBy  string    `json:"changed_by,omitempty"`
}

// NewBookingPayload snapshots b for publishing
func NewBookingPayload(b *model.Booking, changedBy string) BookingEventPayload {
	return BookingEventPayload{
		BookingID:  b.ID,
		UserID:     b.UserID,
		CabID:      b.CabID,
		Status:     string(b.Status),
		TotalPrice: b.TotalPrice,
		Date:       b.BookingDate,
		ChangedBy:  changedBy,
	}
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
	all         []EventHandler
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

// SubscribeAll registers a handler that receives every event.
func (b *EventBus) SubscribeAll(handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = append(b.all, handler)
}

// Publish notifies subscribers of the event type and returns the first
// handler error. Every handler runs regardless.
func (b *EventBus) Publish(event *Event) error {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	handlers = append(handlers, b.all...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	var first error
	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		if err := handler(event); err != nil && first == nil {
			first = err
		}
	}
	return first
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

	return b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
}
