package events

// Event type constants
const (
	EventRatingChanged = "rating.changed"
	EventNotification  = "notification"
)

// RatingChanged is emitted after the catalog confirmed a rating write.
// Value is zero when the rating was removed.
type RatingChanged struct {
	BaseEvent
	MovieID int64   `json:"movie_id"`
	Title   string  `json:"title"`
	Value   float64 `json:"value"`
}

// NewRatingChanged builds a RatingChanged event.
func NewRatingChanged(movieID int64, title string, value float64) *RatingChanged {
	return &RatingChanged{
		BaseEvent: NewBaseEvent(EventRatingChanged, EntityMovie, movieID),
		MovieID:   movieID,
		Title:     title,
		Value:     value,
	}
}

// Notification is a transient user-facing message, shown as a modal or toast.
type Notification struct {
	BaseEvent
	Title   string `json:"title"`
	Message string `json:"message"`
}

// NewNotification builds a Notification about a movie. movieID may be zero.
func NewNotification(movieID int64, title, message string) *Notification {
	entity := EntityUI
	if movieID != 0 {
		entity = EntityMovie
	}
	return &Notification{
		BaseEvent: NewBaseEvent(EventNotification, entity, movieID),
		Title:     title,
		Message:   message,
	}
}
