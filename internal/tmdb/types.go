// Package tmdb provides a client for The Movie Database API.
package tmdb

import "strconv"

// Movie represents TMDB movie metadata.
// Search and rated listings fill GenreIDs; detail lookups fill Genres.
type Movie struct {
	ID           int64   `json:"id"`
	IMDBID       string  `json:"imdb_id,omitempty"` // e.g., "tt0133093"
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"` // "2024-03-01"
	PosterPath   string  `json:"poster_path"`  // "/abc123.jpg"
	BackdropPath string  `json:"backdrop_path"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	Runtime      int     `json:"runtime,omitempty"` // minutes
	GenreIDs     []int   `json:"genre_ids,omitempty"`
	Genres       []Genre `json:"genres,omitempty"`
}

// RatedMovie is a movie carrying the guest session's own rating.
type RatedMovie struct {
	Movie
	Rating float64 `json:"rating"`
}

// Genre represents a movie genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// SearchPage is one page of movie search results.
type SearchPage struct {
	Query        string  `json:"query"`
	Page         int     `json:"page"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
	Results      []Movie `json:"results"`
}

// RatedPage is one page of the guest session's rated movies.
type RatedPage struct {
	Page         int          `json:"page"`
	TotalPages   int          `json:"total_pages"`
	TotalResults int          `json:"total_results"`
	Results      []RatedMovie `json:"results"`
}

// GuestSession is an anonymous session used to authorize rating writes.
type GuestSession struct {
	ID        string `json:"guest_session_id"`
	ExpiresAt string `json:"expires_at"` // "2025-01-01 00:00:00 UTC"
}

type genreListResponse struct {
	Genres []Genre `json:"genres"`
}

type guestSessionResponse struct {
	Success bool `json:"success"`
	GuestSession
}

type ratingRequest struct {
	Value float64 `json:"value"`
}

// Year extracts the year from ReleaseDate.
func (m *Movie) Year() int {
	if len(m.ReleaseDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(m.ReleaseDate[:4])
	if err != nil {
		return 0
	}
	return year
}

// PosterURL returns the full poster image URL.
// Size can be: w92, w154, w185, w342, w500, w780, original
func (m *Movie) PosterURL(size string) string {
	if m.PosterPath == "" {
		return ""
	}
	return "https://image.tmdb.org/t/p/" + size + m.PosterPath
}
