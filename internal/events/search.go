package events

import "github.com/vmunix/reelrate/internal/tmdb"

// Entity types
const (
	EntitySearch = "search" // entity id is the request generation
	EntityMovie  = "movie"  // entity id is the TMDB movie id
	EntityUI     = "ui"
)

// Event type constants
const (
	EventSearchStarted   = "search.started"
	EventSearchCompleted = "search.completed"
	EventSearchEmpty     = "search.empty"
	EventSearchFailed    = "search.failed"
	EventPageSettled     = "search.page_settled"
	EventRatedListed     = "rated.listed"
)

// SearchStarted is emitted when a request leaves for the catalog.
type SearchStarted struct {
	BaseEvent
	Query string `json:"query"`
	Page  int    `json:"page,omitempty"`
}

// SearchCompleted carries a page with at least one result.
type SearchCompleted struct {
	BaseEvent
	Result tmdb.SearchPage `json:"result"`
}

// SearchEmpty is emitted when a query matched nothing.
// Query is the literal text for display.
type SearchEmpty struct {
	BaseEvent
	Query string `json:"query"`
}

// SearchFailed carries a normalized catalog error.
type SearchFailed struct {
	BaseEvent
	Query      string   `json:"query"`
	Page       int      `json:"page,omitempty"`
	Title      string   `json:"title"`
	Message    string   `json:"message"`
	Details    []string `json:"details,omitempty"`
	StatusCode int      `json:"status_code,omitempty"`
}

// NewSearchFailed builds a SearchFailed event from an API error.
func NewSearchFailed(generation int64, query string, page int, err *tmdb.APIError) *SearchFailed {
	return &SearchFailed{
		BaseEvent:  NewBaseEvent(EventSearchFailed, EntitySearch, generation),
		Query:      query,
		Page:       page,
		Title:      err.Title,
		Message:    err.Message,
		Details:    err.Details,
		StatusCode: err.StatusCode,
	}
}

// PageSettled is emitted after every page navigation, successful or not,
// so renderers can reset per-page loading indicators.
type PageSettled struct {
	BaseEvent
	Query string `json:"query"`
	Page  int    `json:"page"`
	OK    bool   `json:"ok"`
}

// RatedListed carries the rated-movies collection for display.
type RatedListed struct {
	BaseEvent
	Movies []tmdb.RatedMovie `json:"movies"`
}
