package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBaseEvent_ImplementsEvent(t *testing.T) {
	now := time.Now()
	e := BaseEvent{
		Type:      "test.event",
		Entity:    EntityMovie,
		ID:        42,
		Timestamp: now,
	}

	assert.Equal(t, "test.event", e.EventType())
	assert.Equal(t, EntityMovie, e.EntityType())
	assert.Equal(t, int64(42), e.EntityID())
	assert.Equal(t, now, e.OccurredAt())
}

func TestNewBaseEvent(t *testing.T) {
	e := NewBaseEvent(EventSearchStarted, EntitySearch, 123)

	assert.Equal(t, EventSearchStarted, e.EventType())
	assert.Equal(t, EntitySearch, e.EntityType())
	assert.Equal(t, int64(123), e.EntityID())
	assert.False(t, e.OccurredAt().IsZero())
}

func TestNewNotification_Entity(t *testing.T) {
	assert.Equal(t, EntityUI, NewNotification(0, "t", "m").EntityType())

	n := NewNotification(603, `Failed to rate movie "The Matrix"`, "Fetch response code: 401")
	assert.Equal(t, EntityMovie, n.EntityType())
	assert.Equal(t, int64(603), n.EntityID())
	assert.Equal(t, EventNotification, n.EventType())
}
