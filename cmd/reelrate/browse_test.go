package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/reelrate/internal/app"
	"github.com/vmunix/reelrate/internal/config"
	"github.com/vmunix/reelrate/internal/tmdb"
)

func TestParseBrowseLine(t *testing.T) {
	tests := []struct {
		line    string
		want    browseAction
		wantErr bool
	}{
		{"the matrix", browseAction{kind: "query", text: "the matrix"}, false},
		{"  ", browseAction{kind: "query", text: ""}, false},
		{":q", browseAction{kind: "quit"}, false},
		{":quit", browseAction{kind: "quit"}, false},
		{":rated", browseAction{kind: "rated"}, false},
		{":search", browseAction{kind: "search"}, false},
		{":page 3", browseAction{kind: "page", index: 3}, false},
		{":page 0", browseAction{}, true},
		{":page", browseAction{}, true},
		{":rate 2 7.5", browseAction{kind: "rate", index: 2, value: 7.5}, false},
		{":rate 2", browseAction{}, true},
		{":rate x 7", browseAction{}, true},
		{":unrate 1", browseAction{kind: "unrate", index: 1}, false},
		{":", browseAction{}, true},
		{":frobnicate", browseAction{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := parseBrowseLine(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// catalogServer answers the catalog endpoints with one movie for any query.
func catalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/3/genre/movie/list", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(t, w, map[string]any{"genres": []tmdb.Genre{{ID: 878, Name: "Science Fiction"}}})
	})
	mux.HandleFunc("/3/authentication/guest_session/new", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(t, w, map[string]any{"success": true, "guest_session_id": "guest-1", "expires_at": "2030-01-01 00:00:00 UTC"})
	})
	mux.HandleFunc("/3/guest_session/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/3/search/movie", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(t, w, tmdb.SearchPage{
			Page: 1, TotalPages: 1, TotalResults: 1,
			Results: []tmdb.Movie{{
				ID: 348, Title: "Alien", Overview: "In space no one can hear you scream.",
				ReleaseDate: "1979-05-25", PosterPath: "/alien.jpg", VoteAverage: 8.1, GenreIDs: []int{878},
			}},
		})
	})
	mux.HandleFunc("/3/movie/348/rating", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(t, w, map[string]any{"status_code": 1, "status_message": "Success."})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func respondJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatalf("failed to encode JSON response: %v", err)
	}
}

func newBrowseApp(t *testing.T) *app.App {
	t.Helper()
	cfg := config.Default()
	cfg.TMDB.APIToken = "test-token"
	cfg.TMDB.BaseURL = catalogServer(t).URL
	cfg.TMDB.RequestsPerSecond = 0
	cfg.Database.Path = filepath.Join(t.TempDir(), "reelrate.db")
	cfg.Search.Debounce = 20 * time.Millisecond

	a, err := app.New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	require.NoError(t, a.Start(context.Background()))
	return a
}

func TestBrowse_RateAndList(t *testing.T) {
	a := newBrowseApp(t)

	var buf bytes.Buffer
	out := &syncWriter{w: &buf}
	in := strings.NewReader(":rate 1 8\n:rated\n:bogus\n:rate 9 5\n:quit\n")

	require.NoError(t, browse(context.Background(), a, in, out))

	rating, ok := a.Ratings.Cache().Rating(348)
	require.True(t, ok)
	assert.Equal(t, 8.0, rating)

	got := buf.String()
	assert.Contains(t, got, "Rated movies (1)")
	assert.Contains(t, got, "Alien")
	assert.Contains(t, got, "unknown command: bogus")
	assert.Contains(t, got, "No result 9 on this page")
}

func TestBrowse_EOFEnds(t *testing.T) {
	a := newBrowseApp(t)

	var buf bytes.Buffer
	done := make(chan error, 1)
	go func() { done <- browse(context.Background(), a, strings.NewReader(""), &syncWriter{w: &buf}) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("browse did not return at end of input")
	}
}

func TestResultAt(t *testing.T) {
	a := newBrowseApp(t)

	m, ok := resultAt(a, 1)
	require.True(t, ok)
	assert.Equal(t, int64(348), m.ID)

	_, ok = resultAt(a, 2)
	assert.False(t, ok)
	_, ok = resultAt(a, 0)
	assert.False(t, ok)
}
