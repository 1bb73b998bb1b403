package tmdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL  = "https://api.themoviedb.org"
	defaultCacheTTL = 24 * time.Hour
	defaultLanguage = "en-US"
)

// Client is a TMDB API v3 client authenticated with a bearer token.
type Client struct {
	token        string
	baseURL      string
	language     string
	includeAdult bool
	httpClient   *http.Client
	limiter      *rate.Limiter
	log          *slog.Logger
	movies       *ttlCache[int64, *Movie]
	genres       *ttlCache[string, []Genre]
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithCacheTTL sets the TTL of movie detail and genre lookups.
// Zero disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.movies = newTTLCache[int64, *Movie](ttl)
		c.genres = newTTLCache[string, []Genre](ttl)
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLanguage sets the language parameter sent with search requests.
func WithLanguage(lang string) Option {
	return func(c *Client) {
		c.language = lang
	}
}

// WithIncludeAdult controls the include_adult search parameter.
func WithIncludeAdult(include bool) Option {
	return func(c *Client) {
		c.includeAdult = include
	}
}

// WithRateLimit caps outgoing requests to rps per second.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log.With("component", "tmdb")
	}
}

// NewClient creates a new TMDB client.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		token:        token,
		baseURL:      defaultBaseURL,
		language:     defaultLanguage,
		includeAdult: true,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log:    slog.Default().With("component", "tmdb"),
		movies: newTTLCache[int64, *Movie](defaultCacheTTL),
		genres: newTTLCache[string, []Genre](defaultCacheTTL),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search queries movies by title. Page zero leaves the page parameter out,
// which TMDB treats as page 1. Callers must not pass an empty query.
func (c *Client) Search(ctx context.Context, query string, page int) (*SearchPage, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", strconv.FormatBool(c.includeAdult))
	params.Set("language", c.language)
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}

	var result SearchPage
	if err := c.do(ctx, http.MethodGet, "/3/search/movie", params, nil, &result); err != nil {
		return nil, err
	}
	result.Query = query
	if result.Page == 0 {
		result.Page = max(page, 1)
	}

	c.log.Debug("search complete", "query", query, "page", result.Page, "total_pages", result.TotalPages, "results", len(result.Results))
	return &result, nil
}

// Genres fetches the movie genre list.
func (c *Client) Genres(ctx context.Context) ([]Genre, error) {
	if genres, ok := c.genres.get(c.language); ok {
		return genres, nil
	}

	params := url.Values{}
	params.Set("language", c.language)

	var result genreListResponse
	if err := c.do(ctx, http.MethodGet, "/3/genre/movie/list", params, nil, &result); err != nil {
		return nil, err
	}

	c.genres.set(c.language, result.Genres)
	return result.Genres, nil
}

// GetMovie fetches movie details by TMDB ID.
func (c *Client) GetMovie(ctx context.Context, tmdbID int64) (*Movie, error) {
	if movie, ok := c.movies.get(tmdbID); ok {
		return movie, nil
	}

	params := url.Values{}
	params.Set("language", c.language)

	var movie Movie
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/3/movie/%d", tmdbID), params, nil, &movie); err != nil {
		return nil, err
	}

	c.movies.set(tmdbID, &movie)
	return &movie, nil
}

// NewGuestSession asks TMDB for a fresh guest session.
func (c *Client) NewGuestSession(ctx context.Context) (*GuestSession, error) {
	var result guestSessionResponse
	if err := c.do(ctx, http.MethodGet, "/3/authentication/guest_session/new", nil, nil, &result); err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, &APIError{StatusCode: http.StatusOK, Message: "guest session request was not successful"}
	}
	if result.ID == "" {
		return nil, &APIError{StatusCode: http.StatusOK, Message: "guest session response missing id"}
	}

	c.log.Debug("guest session created", "expires_at", result.ExpiresAt)
	return &result.GuestSession, nil
}

// RatedMovies fetches one page of the movies rated by a guest session.
// A session that has never rated anything answers 404; use IsNotFound.
func (c *Client) RatedMovies(ctx context.Context, sessionID string, page int) (*RatedPage, error) {
	params := url.Values{}
	params.Set("language", c.language)
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}

	var result RatedPage
	path := "/3/guest_session/" + url.PathEscape(sessionID) + "/rated/movies"
	if err := c.do(ctx, http.MethodGet, path, params, nil, &result); err != nil {
		return nil, err
	}
	if result.Page == 0 {
		result.Page = max(page, 1)
	}
	return &result, nil
}

// RateMovie creates or replaces the guest session's rating for a movie.
func (c *Client) RateMovie(ctx context.Context, sessionID string, movieID int64, value float64) error {
	params := url.Values{}
	params.Set("guest_session_id", sessionID)
	path := fmt.Sprintf("/3/movie/%d/rating", movieID)
	return c.do(ctx, http.MethodPost, path, params, ratingRequest{Value: value}, nil)
}

// DeleteRating removes the guest session's rating for a movie.
func (c *Client) DeleteRating(ctx context.Context, sessionID string, movieID int64) error {
	params := url.Values{}
	params.Set("guest_session_id", sessionID)
	path := fmt.Sprintf("/3/movie/%d/rating", movieID)
	return c.do(ctx, http.MethodDelete, path, params, nil, nil)
}

// do executes a request and decodes a 2xx JSON body into out.
// Every error it returns is an *APIError.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	start := time.Now()

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &APIError{Message: "encode request", Err: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return &APIError{Message: "create request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json;charset=utf-8")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return transportError(err)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("request failed", "method", method, "path", path, "error", err)
		return transportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug("request complete", "method", method, "path", path, "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return responseError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: "decode response", Err: err}
	}
	return nil
}
