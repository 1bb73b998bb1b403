package events

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Registry decodes logged events back into their concrete types.
type Registry struct {
	factories map[string]func() Event
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]func() Event)}
}

// Register binds eventType to the concrete event type T. Registering the
// same event type twice panics.
func Register[T any, PT interface {
	*T
	Event
}](r *Registry, eventType string) {
	if _, dup := r.factories[eventType]; dup {
		panic("events: duplicate registration of " + eventType)
	}
	r.factories[eventType] = func() Event { return PT(new(T)) }
}

// Types returns the registered event types, sorted.
func (r *Registry) Types() []string {
	return slices.Sorted(maps.Keys(r.factories))
}

// Known reports whether eventType is registered.
func (r *Registry) Known(eventType string) bool {
	_, ok := r.factories[eventType]
	return ok
}

// Unmarshal decodes a logged row into its concrete type. The row's columns
// win over the payload for type and entity, so a payload written without
// base fields still decodes to a complete event.
func (r *Registry) Unmarshal(raw RawEvent) (Event, error) {
	newEvent, ok := r.factories[raw.EventType]
	if !ok {
		return nil, fmt.Errorf("unknown event type %q", raw.EventType)
	}

	e := newEvent()
	if err := json.Unmarshal([]byte(raw.Payload), e); err != nil {
		return nil, fmt.Errorf("unmarshal %s payload: %w", raw.EventType, err)
	}
	if b, ok := e.(interface{ restore(RawEvent) }); ok {
		b.restore(raw)
	}
	return e, nil
}

func (e *BaseEvent) restore(raw RawEvent) {
	e.Type = raw.EventType
	e.Entity = raw.EntityType
	e.ID = raw.EntityID
	if e.Timestamp.IsZero() {
		e.Timestamp = raw.OccurredAt
	}
}

// DefaultRegistry returns a registry holding every event the app publishes.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	Register[SearchStarted](r, EventSearchStarted)
	Register[SearchCompleted](r, EventSearchCompleted)
	Register[SearchEmpty](r, EventSearchEmpty)
	Register[SearchFailed](r, EventSearchFailed)
	Register[PageSettled](r, EventPageSettled)
	Register[RatedListed](r, EventRatedListed)

	Register[RatingChanged](r, EventRatingChanged)
	Register[Notification](r, EventNotification)

	return r
}
