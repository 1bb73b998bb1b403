// Package app wires the catalog client, session, ratings and search into one
// application context and runs its startup sequence.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmunix/reelrate/internal/config"
	"github.com/vmunix/reelrate/internal/display"
	"github.com/vmunix/reelrate/internal/events"
	"github.com/vmunix/reelrate/internal/kv"
	"github.com/vmunix/reelrate/internal/migrations"
	"github.com/vmunix/reelrate/internal/ratings"
	"github.com/vmunix/reelrate/internal/search"
	"github.com/vmunix/reelrate/internal/session"
	"github.com/vmunix/reelrate/internal/tmdb"
	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"
)

// GenresErrorTitle is attached to failures loading the genre list.
const GenresErrorTitle = "Movie genres error"

// pruneInterval is how often Run trims the event log.
const pruneInterval = time.Hour

// App is one application context. It owns every component and the
// resources they share; nothing is global.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	db       *sql.DB
	store    kv.Store
	closers  []io.Closer
	eventLog *events.EventLog

	Bus      *events.Bus
	Catalog  *tmdb.Client
	Sessions *session.Store
	Ratings  *ratings.Store
	Search   *search.Orchestrator

	mu     sync.RWMutex
	genres display.GenreTable
}

// New opens storage and constructs all components. The caller must Close
// the returned App.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{cfg: cfg, logger: logger, genres: display.GenreTable{}}

	db, err := openDB(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	a.db = db
	a.closers = append(a.closers, db)

	store, err := a.openStore(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.store = store

	if cfg.Events.Persist {
		a.eventLog = events.NewEventLog(db)
	}
	a.Bus = events.NewBus(a.eventLog, logger.With("component", "bus"))

	a.Catalog = newCatalog(cfg.TMDB, logger.With("component", "tmdb"))
	a.Sessions = session.NewStore(store, a.Catalog, cfg.Session.Key, logger.With("component", "session"))
	a.Ratings = ratings.NewStore(ratings.NewCache(), a.Catalog, a.Sessions, a.Bus, logger.With("component", "ratings"))
	a.Search = search.New(a.Catalog, a.Bus,
		search.WithDebounce(cfg.Search.Debounce),
		search.WithDefaultQuery(cfg.Search.DefaultQuery),
		search.WithLogger(logger.With("component", "search")),
	)

	return a, nil
}

func openDB(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// modernc sqlite serializes writers; one connection also keeps
	// :memory: databases shared.
	db.SetMaxOpenConns(1)

	if err := migrations.Apply(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func (a *App) openStore(ctx context.Context) (kv.Store, error) {
	switch a.cfg.Session.Backend {
	case config.BackendRedis:
		rs, err := kv.NewRedisStore(ctx, kv.RedisOptions{
			Addr:     a.cfg.Redis.Addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
			Prefix:   a.cfg.Redis.Prefix,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rs)
		return rs, nil
	case config.BackendMemory:
		return kv.NewMemoryStore(), nil
	default:
		return kv.NewSQLiteStore(a.db), nil
	}
}

func newCatalog(cfg config.TMDBConfig, logger *slog.Logger) *tmdb.Client {
	opts := []tmdb.Option{
		tmdb.WithBaseURL(cfg.BaseURL),
		tmdb.WithLanguage(cfg.Language),
		tmdb.WithIncludeAdult(cfg.Adult()),
		tmdb.WithCacheTTL(cfg.CacheTTL),
		tmdb.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		tmdb.WithLogger(logger),
	}
	if cfg.RequestsPerSecond > 0 {
		opts = append(opts, tmdb.WithRateLimit(cfg.RequestsPerSecond, cfg.Burst))
	}
	return tmdb.NewClient(cfg.APIToken, opts...)
}

// Start runs the startup sequence: genres, then rated movies, then the
// default search. The first failure stops the sequence and is returned
// as a titled *tmdb.APIError.
func (a *App) Start(ctx context.Context) error {
	if err := a.LoadGenres(ctx); err != nil {
		return err
	}

	if _, err := a.Ratings.RatedMovies(ctx); err != nil {
		return err
	}

	if _, err := a.Search.Search(ctx, a.Search.DefaultQuery()); err != nil {
		return err
	}

	a.logger.Info("started", "genres", len(a.Genres()), "rated", a.Ratings.Cache().Len())
	return nil
}

// LoadGenres fetches the genre list used to label cards.
func (a *App) LoadGenres(ctx context.Context) error {
	genres, err := a.Catalog.Genres(ctx)
	if err != nil {
		return tmdb.AsAPIError(err).WithTitle(GenresErrorTitle)
	}
	a.mu.Lock()
	a.genres = display.NewGenreTable(genres)
	a.mu.Unlock()
	return nil
}

// Genres returns the genre table loaded by Start.
func (a *App) Genres() display.GenreTable {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.genres
}

// ShowRated publishes the rated-movies list for the rated tab.
func (a *App) ShowRated(ctx context.Context) ([]tmdb.RatedMovie, error) {
	rated, err := a.Ratings.RatedMovies(ctx)
	if err != nil {
		return nil, err
	}
	if err := a.Bus.Publish(ctx, &events.RatedListed{
		BaseEvent: events.NewBaseEvent(events.EventRatedListed, events.EntityUI, 0),
		Movies:    rated,
	}); err != nil {
		a.logger.Error("publish failed", "type", events.EventRatedListed, "error", err)
	}
	return rated, nil
}

// ShowSearch is called when the search tab is opened again.
func (a *App) ShowSearch(ctx context.Context) (*tmdb.SearchPage, error) {
	return a.Search.ShowSearch(ctx)
}

// Cards derives display cards with the personal ratings filled in.
func (a *App) Cards(movies []tmdb.Movie) []display.Card {
	return display.Cards(movies, a.Genres(), a.Ratings.Cache().Ratings())
}

// EventLog returns the persistent event log, or nil when disabled.
func (a *App) EventLog() *events.EventLog {
	return a.eventLog
}

// Run feeds query input to the search orchestrator and prunes the event
// log until queries is closed or ctx is canceled.
func (a *App) Run(ctx context.Context, queries <-chan string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return nil
			case q, ok := <-queries:
				if !ok {
					return nil
				}
				a.Search.QueryChanged(q)
			}
		}
	})

	if a.eventLog != nil {
		g.Go(func() error {
			ticker := time.NewTicker(pruneInterval)
			defer ticker.Stop()
			for {
				a.prune(ctx)
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
				}
			}
		})
	}

	return g.Wait()
}

func (a *App) prune(ctx context.Context) {
	n, err := a.eventLog.Prune(ctx, a.cfg.Events.Retention)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			a.logger.Warn("prune events failed", "error", err)
		}
		return
	}
	if n > 0 {
		a.logger.Debug("pruned events", "count", n)
	}
}

// Close stops searches and releases storage.
func (a *App) Close() error {
	if a.Search != nil {
		a.Search.Close()
	}
	if a.Bus != nil {
		_ = a.Bus.Close()
	}

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
