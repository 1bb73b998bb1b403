package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/reelrate/internal/tmdb"
)

func TestRegistry_UnmarshalUnknownType(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Unmarshal(RawEvent{EventType: "unknown.event", Payload: `{}`})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown event type")
}

func TestRegistry_UnmarshalInvalidJSON(t *testing.T) {
	registry := DefaultRegistry()

	_, err := registry.Unmarshal(RawEvent{EventType: EventRatingChanged, Payload: `{invalid json`})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal rating.changed payload")
}

func TestRegistry_Types(t *testing.T) {
	registry := DefaultRegistry()

	assert.Equal(t, []string{
		EventNotification,
		EventRatedListed,
		EventRatingChanged,
		EventSearchCompleted,
		EventSearchEmpty,
		EventSearchFailed,
		EventPageSettled,
		EventSearchStarted,
	}, registry.Types())
	assert.True(t, registry.Known(EventSearchFailed))
	assert.False(t, registry.Known("search.unknown"))
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	registry := NewRegistry()
	Register[Notification](registry, EventNotification)

	assert.Panics(t, func() { Register[RatingChanged](registry, EventNotification) })
}

func TestRegistry_ColumnsFillBaseFields(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	raw := RawEvent{
		EventType:  EventRatingChanged,
		EntityType: EntityMovie,
		EntityID:   603,
		Payload:    `{"title":"The Matrix","value":8.5}`,
		OccurredAt: at,
	}

	event, err := DefaultRegistry().Unmarshal(raw)
	require.NoError(t, err)

	changed, ok := event.(*RatingChanged)
	require.True(t, ok)
	assert.Equal(t, EventRatingChanged, changed.EventType())
	assert.Equal(t, EntityMovie, changed.EntityType())
	assert.Equal(t, int64(603), changed.EntityID())
	assert.Equal(t, at, changed.OccurredAt())
	assert.Equal(t, "The Matrix", changed.Title)
	assert.Equal(t, 8.5, changed.Value)
}

func TestDefaultRegistry(t *testing.T) {
	registry := DefaultRegistry()

	eventTypes := []string{
		EventSearchStarted,
		EventSearchCompleted,
		EventSearchEmpty,
		EventSearchFailed,
		EventPageSettled,
		EventRatedListed,
		EventRatingChanged,
		EventNotification,
	}

	for _, eventType := range eventTypes {
		t.Run(eventType, func(t *testing.T) {
			raw := RawEvent{
				EventType: eventType,
				Payload:   `{"type":"` + eventType + `","entity_type":"search","entity_id":1,"occurred_at":"2024-01-01T00:00:00Z"}`,
			}
			event, err := registry.Unmarshal(raw)
			require.NoError(t, err, "Failed to unmarshal %s", eventType)
			assert.Equal(t, eventType, event.EventType())
		})
	}
}

func TestRegistry_ReplaysLoggedSearchFailure(t *testing.T) {
	db := setupTestDB(t)
	log := NewEventLog(db)
	ctx := context.Background()

	apiErr := (&tmdb.APIError{
		StatusCode: 401,
		Message:    "Fetch response code: 401",
		Details:    []string{"Invalid API key (status code: 7)"},
	}).WithTitle("Search error")
	_, err := log.Append(ctx, NewSearchFailed(7, "Matrix", 2, apiErr))
	require.NoError(t, err)

	raw, err := log.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, raw, 1)

	event, err := DefaultRegistry().Unmarshal(raw[0])
	require.NoError(t, err)

	failed, ok := event.(*SearchFailed)
	require.True(t, ok)
	assert.Equal(t, int64(7), failed.EntityID())
	assert.Equal(t, "Matrix", failed.Query)
	assert.Equal(t, 2, failed.Page)
	assert.Equal(t, "Search error", failed.Title)
	assert.Equal(t, []string{"Invalid API key (status code: 7)"}, failed.Details)
	assert.Equal(t, 401, failed.StatusCode)
}
