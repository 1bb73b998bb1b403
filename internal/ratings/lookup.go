package ratings

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/hbollon/go-edlib"
	"github.com/vmunix/reelrate/internal/tmdb"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MinLookupScore is the Jaro-Winkler similarity a title needs to match.
const MinLookupScore = 0.85

// Match is the result of a fuzzy title lookup.
type Match struct {
	Movie tmdb.RatedMovie
	Score float64 // Jaro-Winkler similarity (0.0-1.0)
}

// Lookup finds the cached rated movie whose title best matches title.
// A numeric title is tried as a movie id first.
func (c *Cache) Lookup(title string) (Match, bool) {
	entries := c.Entries()
	if id, err := strconv.ParseInt(strings.TrimSpace(title), 10, 64); err == nil {
		for _, m := range entries {
			if m.ID == id {
				return Match{Movie: m, Score: 1}, true
			}
		}
	}

	want := CleanTitle(title)
	if want == "" {
		return Match{}, false
	}

	var best Match
	for _, m := range entries {
		score := float64(edlib.JaroWinklerSimilarity(want, CleanTitle(m.Title)))
		if score > best.Score {
			best = Match{Movie: m, Score: score}
		}
	}
	if best.Score < MinLookupScore {
		return Match{}, false
	}
	return best, true
}

// CleanTitle normalizes a title for matching: lower case, no accents,
// no leading article, letters and digits only, single spaces.
func CleanTitle(title string) string {
	s := removeAccents(strings.ToLower(title))
	s = strings.ReplaceAll(s, "&", " and ")
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, ".", " ")

	// "Léon: The Professional" loses both articles
	parts := strings.Split(s, ":")
	for i, part := range parts {
		parts[i] = stripLeadingArticle(strings.TrimSpace(part))
	}
	s = strings.Join(parts, " ")

	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

func stripLeadingArticle(s string) string {
	for _, art := range []string{"the ", "a ", "an "} {
		if strings.HasPrefix(s, art) {
			return strings.TrimPrefix(s, art)
		}
	}
	return s
}
