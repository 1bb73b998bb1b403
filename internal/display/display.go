// Package display derives what a movie card shows from catalog data:
// shortened overviews, score colors, formatted dates and genre names.
// Nothing here mutates the movies it is given.
package display

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/vmunix/reelrate/internal/tmdb"
)

const (
	// OverviewMaxLength is the longest overview shown in full, in characters.
	OverviewMaxLength = 209

	// CompactTitleLength is the title length above which titles are shortened
	// and shown in full on hover.
	CompactTitleLength = 27

	// PosterSize is the TMDB image size used for card covers.
	PosterSize = "w500"

	// DateLayout renders release dates like "March 30, 1999".
	DateLayout = "January 2, 2006"

	// Ellipsis ends a shortened overview.
	Ellipsis = " …"
)

// Score band colors.
const (
	ColorHigh   = "#66e900"
	ColorMedium = "#e9d100"
	ColorLow    = "#e97e00"
	ColorBad    = "#e90000"
)

// TruncateOverview shortens text to OverviewMaxLength characters, cutting
// back to the last whitespace and appending Ellipsis. Shorter text is
// returned unchanged; text without whitespace is cut hard.
func TruncateOverview(text string) string {
	if utf8.RuneCountInString(text) <= OverviewMaxLength {
		return text
	}

	cut := []rune(text)[:OverviewMaxLength]
	for i := len(cut) - 1; i >= 0; i-- {
		if unicode.IsSpace(cut[i]) {
			return string(cut[:i]) + Ellipsis
		}
	}
	return string(cut)
}

// IsCompactTitle reports whether a title is too long for the card header.
func IsCompactTitle(title string) bool {
	return utf8.RuneCountInString(title) > CompactTitleLength
}

// ScoreColor returns the band color for an average vote.
func ScoreColor(score float64) string {
	switch {
	case score > 7:
		return ColorHigh
	case score > 5:
		return ColorMedium
	case score > 3:
		return ColorLow
	default:
		return ColorBad
	}
}

// FormatScore renders an average vote with two significant digits:
// 7.53 -> "7.5", 8 -> "8.0", 10 -> "10", 0.55 -> "0.55".
func FormatScore(score float64) string {
	switch {
	case score > 0 && score < 1:
		return strconv.FormatFloat(score, 'f', 2, 64)
	case math.Abs(score) >= 9.95:
		return strconv.FormatFloat(score, 'f', 0, 64)
	default:
		return strconv.FormatFloat(score, 'f', 1, 64)
	}
}

// FormatReleaseDate renders a "2006-01-02" date as DateLayout. Dates that
// do not parse are returned as given.
func FormatReleaseDate(date string) string {
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return date
	}
	return t.Format(DateLayout)
}

// Visible reports whether a movie has what a card needs: a poster,
// an overview and a release date.
func Visible(m tmdb.Movie) bool {
	return m.PosterPath != "" && m.Overview != "" && m.ReleaseDate != ""
}

// PosterURL returns the card cover URL.
func PosterURL(m tmdb.Movie) string {
	return m.PosterURL(PosterSize)
}

// Stars renders a rating on the ten-star half-step scale.
func Stars(rating float64) string {
	const positions = 10
	halves := int(math.Round(rating * 2))
	halves = max(0, min(halves, positions*2))

	var b strings.Builder
	for i := 0; i < positions; i++ {
		switch {
		case halves >= 2*(i+1):
			b.WriteString("★")
		case halves == 2*i+1:
			b.WriteString("⯪")
		default:
			b.WriteString("☆")
		}
	}
	return b.String()
}
