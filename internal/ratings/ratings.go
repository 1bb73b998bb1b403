// Package ratings reconciles personal movie ratings with the catalog.
// The local cache changes only after the catalog confirmed a write.
package ratings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/vmunix/reelrate/internal/events"
	"github.com/vmunix/reelrate/internal/tmdb"
	"golang.org/x/sync/singleflight"
)

//go:generate mockgen -source=ratings.go -destination=mocks/mock_ratings.go -package=mocks

// Title attached to failures of the rated-movies listing.
const ErrorTitle = "Rated movies error"

// Rating bounds. Values are half-star steps in (0, MaxRating].
const (
	MaxRating = 10.0
	Step      = 0.5
)

// ErrInvalidRating is returned for values outside (0, 10] or off the 0.5 grid.
var ErrInvalidRating = errors.New("rating must be between 0.5 and 10 in steps of 0.5")

// Catalog is the subset of the catalog client used for ratings.
type Catalog interface {
	RatedMovies(ctx context.Context, sessionID string, page int) (*tmdb.RatedPage, error)
	RateMovie(ctx context.Context, sessionID string, movieID int64, value float64) error
	DeleteRating(ctx context.Context, sessionID string, movieID int64) error
}

// Sessions hands out the guest session id authorizing rating calls.
type Sessions interface {
	ID(ctx context.Context) (string, error)
}

// Publisher receives rating changes and failure notifications.
type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// Store applies rating edits and serves the rated-movies listing.
type Store struct {
	cache    *Cache
	catalog  Catalog
	sessions Sessions
	pub      Publisher
	log      *slog.Logger

	group singleflight.Group
}

// NewStore creates a rating store backed by cache.
func NewStore(cache *Cache, catalog Catalog, sessions Sessions, pub Publisher, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		cache:    cache,
		catalog:  catalog,
		sessions: sessions,
		pub:      pub,
		log:      log,
	}
}

// Cache returns the store's cache.
func (s *Store) Cache() *Cache {
	return s.cache
}

// ValidRating reports whether v is an accepted non-zero rating.
func ValidRating(v float64) bool {
	if v <= 0 || v > MaxRating {
		return false
	}
	return math.Mod(v, Step) == 0
}

// SetRating rates movie with value. A value of zero removes the rating.
// On success the cache is updated, a rating.changed event is published and
// done, if non-nil, receives the value. Failures are reported as a
// notification and returned; the cache is left unchanged.
func (s *Store) SetRating(ctx context.Context, movie tmdb.Movie, value float64, done func(float64)) error {
	if value == 0 {
		return s.ClearRating(ctx, movie, func() {
			if done != nil {
				done(0)
			}
		})
	}

	title := fmt.Sprintf("Failed to rate movie %q", movie.Title)
	if !ValidRating(value) {
		s.notify(ctx, movie.ID, title, ErrInvalidRating.Error())
		return ErrInvalidRating
	}

	sessionID, err := s.sessions.ID(ctx)
	if err != nil {
		s.notify(ctx, movie.ID, title, err.Error())
		return err
	}

	if err := s.catalog.RateMovie(ctx, sessionID, movie.ID, value); err != nil {
		s.log.Debug("rate movie", "movie_id", movie.ID, "error", err)
		s.notify(ctx, movie.ID, title, messageOf(err))
		return err
	}

	s.cache.upsert(movie, value)
	s.log.Debug("movie rated", "movie_id", movie.ID, "value", value)
	s.publish(ctx, events.NewRatingChanged(movie.ID, movie.Title, value))
	if done != nil {
		done(value)
	}
	return nil
}

// ClearRating removes the rating of movie. On success the movie leaves the
// cache, rating.changed is published with value 0 and done is called.
func (s *Store) ClearRating(ctx context.Context, movie tmdb.Movie, done func()) error {
	title := fmt.Sprintf("Failed to remove rating for movie %q", movie.Title)

	sessionID, err := s.sessions.ID(ctx)
	if err != nil {
		s.notify(ctx, movie.ID, title, err.Error())
		return err
	}

	if err := s.catalog.DeleteRating(ctx, sessionID, movie.ID); err != nil {
		s.log.Debug("delete rating", "movie_id", movie.ID, "error", err)
		s.notify(ctx, movie.ID, title, messageOf(err))
		return err
	}

	s.cache.remove(movie.ID)
	s.log.Debug("rating removed", "movie_id", movie.ID)
	s.publish(ctx, events.NewRatingChanged(movie.ID, movie.Title, 0))
	if done != nil {
		done()
	}
	return nil
}

// RatedMovies returns all rated movies. The first successful call walks every
// remote page in order; later calls are served from the cache. A 404 from the
// catalog means nothing was rated yet. Concurrent first calls share one walk.
func (s *Store) RatedMovies(ctx context.Context) ([]tmdb.RatedMovie, error) {
	if s.cache.Loaded() {
		return s.cache.Entries(), nil
	}

	_, err, _ := s.group.Do("rated", func() (any, error) {
		if s.cache.Loaded() {
			return nil, nil
		}
		return nil, s.load(ctx)
	})
	if err != nil {
		return nil, err
	}
	return s.cache.Entries(), nil
}

func (s *Store) load(ctx context.Context) error {
	sessionID, err := s.sessions.ID(ctx)
	if err != nil {
		return (&tmdb.APIError{Message: err.Error(), Err: err}).WithTitle(ErrorTitle)
	}

	// Pages are merged only once all of them arrived, so a failed load
	// leaves the cache as it was.
	var all []tmdb.RatedMovie
	for page := 1; ; page++ {
		resp, err := s.catalog.RatedMovies(ctx, sessionID, page)
		if tmdb.IsNotFound(err) {
			s.log.Debug("no rated movies for session")
			break
		}
		if err != nil {
			return tmdb.AsAPIError(err).WithTitle(ErrorTitle)
		}

		all = append(all, resp.Results...)
		if page >= resp.TotalPages {
			break
		}
	}

	s.cache.merge(all)
	s.cache.markLoaded()
	s.log.Info("rated movies loaded", "count", s.cache.Len())
	return nil
}

// messageOf extracts the user-facing message of a catalog error, such as
// "Fetch response code: 401". Details stay in the log.
func messageOf(err error) string {
	return tmdb.AsAPIError(err).Message
}

func (s *Store) notify(ctx context.Context, movieID int64, title, message string) {
	s.log.Warn("rating failed", "movie_id", movieID, "title", title, "message", message)
	s.publish(ctx, events.NewNotification(movieID, title, message))
}

func (s *Store) publish(ctx context.Context, e events.Event) {
	if s.pub == nil {
		return
	}
	if err := s.pub.Publish(ctx, e); err != nil {
		s.log.Error("publish failed", "type", e.EventType(), "error", err)
	}
}
