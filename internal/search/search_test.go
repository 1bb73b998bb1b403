package search

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/reelrate/internal/events"
	"github.com/vmunix/reelrate/internal/tmdb"
)

type searchCall struct {
	query string
	page  int
}

type fakeSearcher struct {
	mu    sync.Mutex
	calls []searchCall
	fn    func(ctx context.Context, query string, page int) (*tmdb.SearchPage, error)
}

func (f *fakeSearcher) Search(ctx context.Context, query string, page int) (*tmdb.SearchPage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, searchCall{query, page})
	f.mu.Unlock()
	return f.fn(ctx, query, page)
}

func (f *fakeSearcher) Calls() []searchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]searchCall(nil), f.calls...)
}

// catalog answers with five pages for "Matrix", nothing for "xyzzynomatch"
// and one page for anything else.
func catalog(_ context.Context, query string, page int) (*tmdb.SearchPage, error) {
	if page == 0 {
		page = 1
	}
	switch query {
	case "xyzzynomatch":
		return &tmdb.SearchPage{Query: query, Page: 1}, nil
	case "Matrix":
		return &tmdb.SearchPage{
			Query: query, Page: page, TotalPages: 5, TotalResults: 100,
			Results: []tmdb.Movie{{ID: int64(600 + page), Title: "The Matrix"}},
		}, nil
	default:
		return &tmdb.SearchPage{
			Query: query, Page: page, TotalPages: 1, TotalResults: 1,
			Results: []tmdb.Movie{{ID: 1, Title: query}},
		}, nil
	}
}

func newTestOrchestrator(t *testing.T, fn func(context.Context, string, int) (*tmdb.SearchPage, error), opts ...Option) (*Orchestrator, *fakeSearcher, <-chan events.Event) {
	t.Helper()
	bus := events.NewBus(nil, nil)
	ch := bus.SubscribeAll(100)
	searcher := &fakeSearcher{fn: fn}
	o := New(searcher, bus, opts...)
	t.Cleanup(func() {
		o.Close()
		_ = bus.Close()
	})
	return o, searcher, ch
}

func waitFor(t *testing.T, ch <-chan events.Event, eventType string) events.Event {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case e := <-ch:
			if e.EventType() == eventType {
				return e
			}
		case <-timeout:
			t.Fatalf("timeout waiting for %s", eventType)
			return nil
		}
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "searching", Searching.String())
	assert.Equal(t, "results", ResultsReady.String())
	assert.Equal(t, "empty", Empty.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestOrchestrator_DebouncedBurstSearchesOnce(t *testing.T) {
	o, searcher, ch := newTestOrchestrator(t, catalog, WithDebounce(30*time.Millisecond))

	for _, text := range []string{"M", "Ma", "Mat", "Matr", "Matrix"} {
		o.QueryChanged(text)
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, Idle, o.State(), "nothing searched while typing")

	e := waitFor(t, ch, events.EventSearchCompleted)
	assert.Equal(t, "Matrix", e.(*events.SearchCompleted).Result.Query)

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, []searchCall{{"Matrix", 0}}, searcher.Calls())
	assert.Equal(t, ResultsReady, o.State())
	assert.Equal(t, "Matrix", o.Query())
}

func TestOrchestrator_EmptyQueryIgnored(t *testing.T) {
	o, searcher, _ := newTestOrchestrator(t, catalog, WithDebounce(10*time.Millisecond))

	o.QueryChanged("")
	assert.False(t, o.Pending())

	time.Sleep(30 * time.Millisecond)
	assert.Empty(t, searcher.Calls())
	assert.Equal(t, Idle, o.State())
	assert.Equal(t, "", o.Query())
}

func TestOrchestrator_EmptyQueryKeepsResults(t *testing.T) {
	o, searcher, _ := newTestOrchestrator(t, catalog, WithDebounce(10*time.Millisecond))

	_, err := o.Search(context.Background(), "Alien")
	require.NoError(t, err)

	o.QueryChanged("")
	time.Sleep(30 * time.Millisecond)

	assert.Len(t, searcher.Calls(), 1)
	snap := o.Snapshot()
	assert.Equal(t, ResultsReady, snap.State)
	assert.Equal(t, "Alien", snap.Query)
	require.NotNil(t, snap.Page)
}

func TestOrchestrator_ClearingInputDropsPendingSearch(t *testing.T) {
	o, searcher, _ := newTestOrchestrator(t, catalog, WithDebounce(30*time.Millisecond))

	o.QueryChanged("Matrix")
	time.Sleep(5 * time.Millisecond)
	require.True(t, o.Pending())

	o.QueryChanged("")
	assert.False(t, o.Pending())

	time.Sleep(80 * time.Millisecond)
	assert.Empty(t, searcher.Calls(), "cleared input must not be searched")
	assert.Equal(t, Idle, o.State())
	assert.Equal(t, "", o.Query())
}

func TestOrchestrator_PagePastEndIsNotEmpty(t *testing.T) {
	o, _, ch := newTestOrchestrator(t, func(_ context.Context, query string, page int) (*tmdb.SearchPage, error) {
		return &tmdb.SearchPage{Query: query, Page: page, TotalPages: 5, TotalResults: 100}, nil
	})

	res, err := o.GoToPage(context.Background(), 6, "Matrix")
	require.NoError(t, err)
	assert.Empty(t, res.Results)
	assert.Equal(t, ResultsReady, o.State())

	completed := waitFor(t, ch, events.EventSearchCompleted).(*events.SearchCompleted)
	assert.Equal(t, 6, completed.Result.Page)
	assert.Equal(t, 100, completed.Result.TotalResults)
}

func TestOrchestrator_ZeroResultsIsEmptyNotFailed(t *testing.T) {
	o, _, ch := newTestOrchestrator(t, catalog)

	res, err := o.Search(context.Background(), "xyzzynomatch")
	require.NoError(t, err)
	assert.Empty(t, res.Results)

	snap := o.Snapshot()
	assert.Equal(t, Empty, snap.State)
	assert.Equal(t, "xyzzynomatch", snap.Query)
	assert.Nil(t, snap.Err)

	e := waitFor(t, ch, events.EventSearchEmpty)
	assert.Equal(t, "xyzzynomatch", e.(*events.SearchEmpty).Query)
}

func TestOrchestrator_Failure(t *testing.T) {
	o, _, ch := newTestOrchestrator(t, func(context.Context, string, int) (*tmdb.SearchPage, error) {
		return nil, &tmdb.APIError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Fetch response code: 401",
			Details:    []string{"Invalid API key: You must be granted a valid key. (status code: 7)"},
		}
	})

	_, err := o.Search(context.Background(), "Matrix")
	require.Error(t, err)

	var apiErr *tmdb.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, ErrorTitle, apiErr.Title)

	snap := o.Snapshot()
	assert.Equal(t, Failed, snap.State)
	require.NotNil(t, snap.Err)
	assert.Equal(t, http.StatusUnauthorized, snap.Err.StatusCode)

	failed := waitFor(t, ch, events.EventSearchFailed).(*events.SearchFailed)
	assert.Equal(t, "Search error", failed.Title)
	assert.Equal(t, "Fetch response code: 401", failed.Message)
	assert.Len(t, failed.Details, 1)
}

func TestOrchestrator_GoToPageLeavesDebouncerAlone(t *testing.T) {
	o, searcher, ch := newTestOrchestrator(t, catalog, WithDebounce(time.Hour))
	ctx := context.Background()

	first, err := o.Search(ctx, "Matrix")
	require.NoError(t, err)
	assert.Equal(t, 5, first.TotalPages)

	o.QueryChanged("Matrix Reloaded")
	require.True(t, o.Pending())

	page2, err := o.GoToPage(ctx, 2, "Matrix")
	require.NoError(t, err)
	assert.Equal(t, 2, page2.Page)
	assert.True(t, o.Pending(), "pending input survives page navigation")

	assert.Equal(t, []searchCall{{"Matrix", 0}, {"Matrix", 2}}, searcher.Calls())

	settled := waitFor(t, ch, events.EventPageSettled).(*events.PageSettled)
	assert.Equal(t, 2, settled.Page)
	assert.Equal(t, "Matrix", settled.Query)
	assert.True(t, settled.OK)
}

func TestOrchestrator_GoToPageFailureStillSettles(t *testing.T) {
	o, _, ch := newTestOrchestrator(t, func(context.Context, string, int) (*tmdb.SearchPage, error) {
		return nil, errors.New("dial tcp: connection refused")
	})

	_, err := o.GoToPage(context.Background(), 3, "Matrix")
	require.Error(t, err)

	settled := waitFor(t, ch, events.EventPageSettled).(*events.PageSettled)
	assert.Equal(t, 3, settled.Page)
	assert.False(t, settled.OK)
	assert.Equal(t, Failed, o.State())
}

func TestOrchestrator_StaleResponseDropped(t *testing.T) {
	release := make(chan struct{})
	slowStarted := make(chan struct{})
	o, _, _ := newTestOrchestrator(t, func(ctx context.Context, query string, page int) (*tmdb.SearchPage, error) {
		if query == "slow" {
			close(slowStarted)
			<-release
		}
		return catalog(ctx, query, page)
	})
	ctx := context.Background()

	slowErr := make(chan error, 1)
	go func() {
		_, err := o.Search(ctx, "slow")
		slowErr <- err
	}()
	<-slowStarted

	_, err := o.Search(ctx, "fast")
	require.NoError(t, err)
	close(release)

	require.ErrorIs(t, <-slowErr, ErrSuperseded)
	snap := o.Snapshot()
	assert.Equal(t, ResultsReady, snap.State)
	assert.Equal(t, "fast", snap.Query)
	assert.Equal(t, "fast", snap.Page.Query)
}

func TestOrchestrator_ShowSearchRerunsDefaultQuery(t *testing.T) {
	o, searcher, _ := newTestOrchestrator(t, catalog)
	ctx := context.Background()

	_, err := o.Search(ctx, "Matrix")
	require.NoError(t, err)
	_, err = o.GoToPage(ctx, 3, "Matrix")
	require.NoError(t, err)

	res, err := o.ShowSearch(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultQuery, res.Query)
	assert.Equal(t, "return", o.Query())

	calls := searcher.Calls()
	assert.Equal(t, searchCall{"return", 0}, calls[len(calls)-1])
}

func TestOrchestrator_CustomDefaultQuery(t *testing.T) {
	o, searcher, _ := newTestOrchestrator(t, catalog, WithDefaultQuery("alien"))

	_, err := o.ShowSearch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alien", o.DefaultQuery())
	assert.Equal(t, []searchCall{{"alien", 0}}, searcher.Calls())
}

func TestOrchestrator_CloseDropsPendingInput(t *testing.T) {
	searcher := &fakeSearcher{fn: catalog}
	o := New(searcher, nil, WithDebounce(20*time.Millisecond))

	o.QueryChanged("Matrix")
	o.Close()

	time.Sleep(40 * time.Millisecond)
	assert.Empty(t, searcher.Calls())

	_, err := o.Search(context.Background(), "Matrix")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestOrchestrator_CloseCancelsRunningSearch(t *testing.T) {
	started := make(chan struct{})
	searcher := &fakeSearcher{fn: func(ctx context.Context, query string, page int) (*tmdb.SearchPage, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	o := New(searcher, nil, WithDebounce(time.Millisecond))

	o.QueryChanged("Matrix")
	<-started
	o.Close() // returns once the debounced search saw cancellation
}
