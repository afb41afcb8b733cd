package observability

import (
	"context"
	"sync"
	"time"
)

const defaultSubscriberBuffer = 16

// Event is a named signal delivered to EventBus subscribers.
type Event struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

// EventBus implements the domain EventPublisher interface.
// Every published event is logged and fanned out to subscribers without blocking the publisher:
// a subscriber whose buffer is full misses the event.
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[int]chan Event
	nextID      int
}

// NewEventBus creates a new event bus.
func NewEventBus() *EventBus {
	return &EventBus{
		mu:          sync.RWMutex{},
		subscribers: make(map[int]chan Event),
		nextID:      0,
	}
}

// Subscribe registers a listener. The returned cancel func unsubscribes and closes the channel.
func (e *EventBus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}

	ch := make(chan Event, buffer)

	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.subscribers[id] = ch
	e.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.subscribers, id)
			e.mu.Unlock()
			close(ch)
		})
	}

	return ch, cancel
}

// Publish publishes an event with the given type and data.
func (e *EventBus) Publish(ctx context.Context, eventType string, data map[string]interface{}) {
	logger := FromContext(ctx)

	fields := make([]Field, 0, len(data)+1)
	fields = append(fields, String("event_type", eventType))
	for k, v := range data {
		fields = append(fields, Any(k, v))
	}
	logger.Info("event published", fields...)

	event := Event{Type: eventType, Data: data, OccurredAt: time.Now()}

	e.mu.RLock()
	defer e.mu.RUnlock()

	for id, ch := range e.subscribers {
		select {
		case ch <- event:
		default:
			logger.Warn("event dropped, subscriber buffer full",
				String("event_type", eventType),
				Int("subscriber", id))
		}
	}
}
