package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/vmunix/reelrate/internal/display"
	"github.com/vmunix/reelrate/internal/events"
	"github.com/vmunix/reelrate/internal/tmdb"
)

// searchOutput is the --json shape of a search page.
type searchOutput struct {
	Query        string         `json:"query"`
	Page         int            `json:"page"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
	Cards        []display.Card `json:"cards"`
}

func newSearchOutput(page *tmdb.SearchPage, cards []display.Card) searchOutput {
	return searchOutput{
		Query:        page.Query,
		Page:         page.Page,
		TotalPages:   page.TotalPages,
		TotalResults: page.TotalResults,
		Cards:        cards,
	}
}

func printSearchPage(w io.Writer, page *tmdb.SearchPage, cards []display.Card) {
	if page.TotalResults == 0 {
		fmt.Fprintf(w, "No results for %q\n", page.Query)
		return
	}
	fmt.Fprintf(w, "Results for %q (page %d of %d, %d total):\n\n", page.Query, page.Page, page.TotalPages, page.TotalResults)
	printCards(w, cards)
}

func printCards(w io.Writer, cards []display.Card) {
	fmt.Fprintf(w, "  # │ %-8s │ %-40s │ %-18s │ %5s │ %s\n", "ID", "TITLE", "RELEASED", "SCORE", "RATING")
	fmt.Fprintln(w, "────┼──────────┼──────────────────────────────────────────┼────────────────────┼───────┼────────────")

	for i, c := range cards {
		title := c.Title
		if len([]rune(title)) > 40 {
			title = string([]rune(title)[:37]) + "..."
		}
		fmt.Fprintf(w, " %2d │ %-8d │ %-40s │ %-18s │ %5s │ %s\n",
			i+1, c.ID, title, c.Released, c.Score, display.Stars(c.Rating))
		if len(c.Genres) > 0 {
			fmt.Fprintf(w, "    │ %s\n", strings.Join(c.Genres, ", "))
		}
	}
}

func printCard(w io.Writer, c display.Card) {
	fmt.Fprintf(w, "%s (%d)\n", c.Title, c.ID)
	fmt.Fprintf(w, "  Released: %s\n", c.Released)
	fmt.Fprintf(w, "  Score:    %s\n", c.Score)
	if len(c.Genres) > 0 {
		fmt.Fprintf(w, "  Genres:   %s\n", strings.Join(c.Genres, ", "))
	}
	if c.PosterURL != "" {
		fmt.Fprintf(w, "  Poster:   %s\n", c.PosterURL)
	}
	fmt.Fprintf(w, "  Rating:   %s\n", display.Stars(c.Rating))
	if c.Overview != "" {
		fmt.Fprintf(w, "\n  %s\n", c.Overview)
	}
}

// printFailure renders a titled error the way the UI shows it, with each
// detail on its own line below the message.
func printFailure(w io.Writer, err error) {
	apiErr := tmdb.AsAPIError(err)
	title := apiErr.Title
	if title == "" {
		title = "Error"
	}
	printTitled(w, title, apiErr.Message, apiErr.Details)
}

func printTitled(w io.Writer, title, message string, details []string) {
	fmt.Fprintf(w, "%s: %s\n", title, message)
	for _, d := range details {
		fmt.Fprintf(w, "  %s\n", d)
	}
}

// printEvent renders the events the interactive mode reacts to. Others
// are ignored.
func printEvent(w io.Writer, e events.Event, cards func([]tmdb.Movie) []display.Card) {
	switch ev := e.(type) {
	case *events.SearchStarted:
		fmt.Fprintf(w, "Searching %q...\n", ev.Query)
	case *events.SearchCompleted:
		printSearchPage(w, &ev.Result, cards(ev.Result.Results))
	case *events.SearchEmpty:
		fmt.Fprintf(w, "No results for %q\n", ev.Query)
	case *events.SearchFailed:
		printTitled(w, ev.Title, ev.Message, ev.Details)
	case *events.RatingChanged:
		fmt.Fprintf(w, "Rated %q %s\n", ev.Title, display.Stars(ev.Value))
	case *events.Notification:
		fmt.Fprintf(w, "%s: %s\n", ev.Title, ev.Message)
	}
}
