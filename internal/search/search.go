package search

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/vmunix/reelrate/internal/events"
	"github.com/vmunix/reelrate/internal/tmdb"
)

const (
	// DefaultQuery is searched on startup and whenever the search tab is shown.
	DefaultQuery = "return"

	// DefaultDebounce is the quiet interval before typed input is searched.
	DefaultDebounce = 1250 * time.Millisecond

	// ErrorTitle is attached to failed searches.
	ErrorTitle = "Search error"
)

// State is the orchestrator's position in the search lifecycle.
type State int

const (
	Idle State = iota
	Searching
	ResultsReady
	Empty // the query matched nothing; a page past the end is still ResultsReady
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Searching:
		return "searching"
	case ResultsReady:
		return "results"
	case Empty:
		return "empty"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Searcher queries the catalog.
type Searcher interface {
	Search(ctx context.Context, query string, page int) (*tmdb.SearchPage, error)
}

// Publisher receives search lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithDebounce sets the quiet interval for typed input.
func WithDebounce(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.debounce = NewDebouncer(d)
		}
	}
}

// WithDefaultQuery sets the query used on startup and tab switches.
func WithDefaultQuery(q string) Option {
	return func(o *Orchestrator) {
		if q != "" {
			o.defaultQuery = q
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *Orchestrator) {
		if log != nil {
			o.log = log
		}
	}
}

// Snapshot is a consistent view of the orchestrator.
type Snapshot struct {
	State State
	Query string
	Page  *tmdb.SearchPage // set in ResultsReady
	Err   *tmdb.APIError   // set in Failed
}

// Orchestrator drives searches from query input and page navigation.
// When requests overlap, only the most recently started one is applied.
type Orchestrator struct {
	searcher     Searcher
	pub          Publisher
	log          *slog.Logger
	debounce     *Debouncer
	defaultQuery string

	ctx    context.Context // parent of debounced searches
	cancel context.CancelFunc

	mu     sync.Mutex
	gen    int64
	snap   Snapshot
	closed bool
}

// New creates an orchestrator in the Idle state.
func New(searcher Searcher, pub Publisher, opts ...Option) *Orchestrator {
	ctx, cancel := context.WithCancel(context.Background())
	o := &Orchestrator{
		searcher:     searcher,
		pub:          pub,
		log:          slog.Default(),
		debounce:     NewDebouncer(DefaultDebounce),
		defaultQuery: DefaultQuery,
		ctx:          ctx,
		cancel:       cancel,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// QueryChanged handles new query text. The search runs once input has been
// quiet for the debounce interval, using the latest text. Empty text drops
// any pending search and leaves the state unchanged.
func (o *Orchestrator) QueryChanged(text string) {
	if text == "" {
		o.debounce.Cancel()
		return
	}
	o.debounce.Trigger(func() {
		if _, err := o.run(o.ctx, text, 0); err != nil && !errors.Is(err, ErrSuperseded) {
			o.log.Debug("debounced search failed", "query", text, "error", err)
		}
	})
}

// Search runs query immediately, bypassing the debouncer.
func (o *Orchestrator) Search(ctx context.Context, query string) (*tmdb.SearchPage, error) {
	return o.run(ctx, query, 0)
}

// GoToPage repeats the search for query at page without debouncing.
// A page_settled event follows whether or not the request succeeded.
func (o *Orchestrator) GoToPage(ctx context.Context, page int, query string) (*tmdb.SearchPage, error) {
	res, err := o.run(ctx, query, page)
	o.publish(ctx, &events.PageSettled{
		BaseEvent: events.NewBaseEvent(events.EventPageSettled, events.EntitySearch, o.generation()),
		Query:     query,
		Page:      page,
		OK:        err == nil,
	})
	return res, err
}

// ShowSearch is called when the search tab becomes visible. It searches the
// default query again; earlier results are not restored.
func (o *Orchestrator) ShowSearch(ctx context.Context) (*tmdb.SearchPage, error) {
	return o.run(ctx, o.defaultQuery, 0)
}

// DefaultQuery returns the query searched on startup and tab switches.
func (o *Orchestrator) DefaultQuery() string {
	return o.defaultQuery
}

// Pending reports whether typed input is waiting for the debounce interval.
func (o *Orchestrator) Pending() bool {
	return o.debounce.Pending()
}

// State returns the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snap.State
}

// Query returns the query of the most recent search.
func (o *Orchestrator) Query() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snap.Query
}

// Snapshot returns the current state with its result or error.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snap
}

// Close drops pending input, cancels debounced searches and waits for them.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()

	o.cancel()
	o.debounce.Stop()
}

func (o *Orchestrator) generation() int64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.gen
}

func (o *Orchestrator) run(ctx context.Context, query string, page int) (*tmdb.SearchPage, error) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil, ErrClosed
	}
	o.gen++
	gen := o.gen
	o.snap = Snapshot{State: Searching, Query: query}
	o.mu.Unlock()

	o.log.Debug("search started", "query", query, "page", page, "generation", gen)
	o.publish(ctx, &events.SearchStarted{
		BaseEvent: events.NewBaseEvent(events.EventSearchStarted, events.EntitySearch, gen),
		Query:     query,
		Page:      page,
	})

	res, err := o.searcher.Search(ctx, query, page)

	o.mu.Lock()
	if gen != o.gen {
		o.mu.Unlock()
		o.log.Debug("dropping stale search", "query", query, "generation", gen)
		return nil, ErrSuperseded
	}

	var e events.Event
	switch {
	case err != nil:
		apiErr := tmdb.AsAPIError(err).WithTitle(ErrorTitle)
		o.snap = Snapshot{State: Failed, Query: query, Err: apiErr}
		e = events.NewSearchFailed(gen, query, page, apiErr)
		err = apiErr
	case res.TotalResults == 0:
		o.snap = Snapshot{State: Empty, Query: query}
		e = &events.SearchEmpty{
			BaseEvent: events.NewBaseEvent(events.EventSearchEmpty, events.EntitySearch, gen),
			Query:     query,
		}
	default:
		o.snap = Snapshot{State: ResultsReady, Query: query, Page: res}
		e = &events.SearchCompleted{
			BaseEvent: events.NewBaseEvent(events.EventSearchCompleted, events.EntitySearch, gen),
			Result:    *res,
		}
	}
	o.mu.Unlock()

	if err != nil {
		o.log.Warn("search failed", "query", query, "page", page, "error", err)
	} else {
		o.log.Debug("search finished", "query", query, "page", res.Page, "total_pages", res.TotalPages, "results", len(res.Results))
	}
	o.publish(ctx, e)
	return res, err
}

func (o *Orchestrator) publish(ctx context.Context, e events.Event) {
	if o.pub == nil {
		return
	}
	if err := o.pub.Publish(ctx, e); err != nil {
		o.log.Error("publish failed", "type", e.EventType(), "error", err)
	}
}
