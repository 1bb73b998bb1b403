package display

import "github.com/vmunix/reelrate/internal/tmdb"

// GenreTable maps genre ids to names.
type GenreTable map[int]string

// NewGenreTable builds a lookup table from the catalog's genre list.
func NewGenreTable(genres []tmdb.Genre) GenreTable {
	t := make(GenreTable, len(genres))
	for _, g := range genres {
		t[g.ID] = g.Name
	}
	return t
}

// Names resolves ids in order. Unknown ids are skipped.
func (t GenreTable) Names(ids []int) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := t[id]; ok {
			names = append(names, name)
		}
	}
	return names
}

// Card is everything needed to render one movie.
type Card struct {
	ID         int64    `json:"id"`
	Title      string   `json:"title"`
	Compact    bool     `json:"compact"`
	PosterURL  string   `json:"poster_url"`
	Score      string   `json:"score"`
	ScoreColor string   `json:"score_color"`
	Released   string   `json:"released"`
	Genres     []string `json:"genres"`
	Overview   string   `json:"overview"`
	Rating     float64  `json:"rating"` // personal rating, 0 when unrated
}

// NewCard derives a card from a movie.
func NewCard(m tmdb.Movie, genres GenreTable, rating float64) Card {
	ids := m.GenreIDs
	if len(ids) == 0 {
		for _, g := range m.Genres {
			ids = append(ids, g.ID)
		}
	}
	return Card{
		ID:         m.ID,
		Title:      m.Title,
		Compact:    IsCompactTitle(m.Title),
		PosterURL:  PosterURL(m),
		Score:      FormatScore(m.VoteAverage),
		ScoreColor: ScoreColor(m.VoteAverage),
		Released:   FormatReleaseDate(m.ReleaseDate),
		Genres:     genres.Names(ids),
		Overview:   TruncateOverview(m.Overview),
		Rating:     rating,
	}
}

// Cards derives cards for the visible movies, in order. ratings holds the
// personal rating per movie id and may be nil.
func Cards(movies []tmdb.Movie, genres GenreTable, ratings map[int64]float64) []Card {
	cards := make([]Card, 0, len(movies))
	for _, m := range movies {
		if !Visible(m) {
			continue
		}
		cards = append(cards, NewCard(m, genres, ratings[m.ID]))
	}
	return cards
}
