package events

import (
	"context"
	"log/slog"
	"sync"
)

// Bus is the central event bus for pub/sub.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]chan Event // eventType -> channels
	allSubs     []chan Event            // subscribers to all events
	log         *EventLog               // SQLite persistence (may be nil)
	logger      *slog.Logger
	closed      bool
	handlers    sync.WaitGroup
}

// NewBus creates a new event bus.
// The EventLog is optional - pass nil to disable persistence.
func NewBus(log *EventLog, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subscribers: make(map[string][]chan Event),
		log:         log,
		logger:      logger,
	}
}

// Publish sends an event to all subscribers and optionally persists it.
// Delivery never blocks; a full subscriber channel drops the event.
func (b *Bus) Publish(ctx context.Context, e Event) error {
	if b.log != nil {
		if _, err := b.log.Append(ctx, e); err != nil {
			b.logger.Error("failed to persist event", "type", e.EventType(), "error", err)
			// delivery matters more than persistence
		}
	}

	// Held across delivery so Close cannot close a channel mid-send.
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil
	}

	typed := b.subscribers[e.EventType()]
	subs := make([]chan Event, 0, len(typed)+len(b.allSubs))
	subs = append(subs, typed...)
	subs = append(subs, b.allSubs...)

	for _, ch := range subs {
		select {
		case ch <- e:
		default:
			b.logger.Warn("subscriber channel full, dropping event",
				"type", e.EventType(),
				"entity_type", e.EntityType(),
				"entity_id", e.EntityID())
		}
	}
	return nil
}

// Subscribe returns a channel for events of the given types.
func (b *Bus) Subscribe(bufferSize int, eventTypes ...string) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, bufferSize)
	if b.closed {
		close(ch)
		return ch
	}
	for _, t := range eventTypes {
		b.subscribers[t] = append(b.subscribers[t], ch)
	}
	return ch
}

// SubscribeAll returns a channel for all events.
func (b *Bus) SubscribeAll(bufferSize int) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, bufferSize)
	if b.closed {
		close(ch)
		return ch
	}
	b.allSubs = append(b.allSubs, ch)
	return ch
}

// Handle calls fn for every event of the given types, in publish order,
// on a dedicated goroutine. With no types, fn receives every event.
// The returned func unsubscribes; Close also stops all handlers.
func (b *Bus) Handle(bufferSize int, fn func(Event), eventTypes ...string) (stop func()) {
	var ch <-chan Event
	if len(eventTypes) == 0 {
		ch = b.SubscribeAll(bufferSize)
	} else {
		ch = b.Subscribe(bufferSize, eventTypes...)
	}

	b.handlers.Add(1)
	go func() {
		defer b.handlers.Done()
		for e := range ch {
			fn(e)
		}
	}()

	return func() { b.Unsubscribe(ch) }
}

// Unsubscribe removes a subscription channel and closes it.
func (b *Bus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var target chan Event
	for eventType, subs := range b.subscribers {
		kept := subs[:0]
		for _, sub := range subs {
			if sub == ch {
				target = sub
				continue
			}
			kept = append(kept, sub)
		}
		b.subscribers[eventType] = kept
	}

	kept := b.allSubs[:0]
	for _, sub := range b.allSubs {
		if sub == ch {
			target = sub
			continue
		}
		kept = append(kept, sub)
	}
	b.allSubs = kept

	if target != nil {
		close(target)
	}
}

// Close shuts down the bus, closes all subscriber channels and waits for
// handlers to drain.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true

	seen := make(map[chan Event]bool)
	for _, subs := range b.subscribers {
		for _, ch := range subs {
			seen[ch] = true
		}
	}
	for _, ch := range b.allSubs {
		seen[ch] = true
	}
	for ch := range seen {
		close(ch)
	}
	b.subscribers = nil
	b.allSubs = nil
	b.mu.Unlock()

	b.handlers.Wait()
	return nil
}
