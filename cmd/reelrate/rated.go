package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vmunix/reelrate/internal/app"
	"github.com/vmunix/reelrate/internal/display"
	"github.com/vmunix/reelrate/internal/events"
	"github.com/vmunix/reelrate/internal/ratings"
	"github.com/vmunix/reelrate/internal/tmdb"
)

var ratedCmd = &cobra.Command{
	Use:   "rated",
	Short: "List your rated movies",
	Args:  cobra.NoArgs,
	RunE:  runRatedCmd,
}

var rateCmd = &cobra.Command{
	Use:   "rate <movie> <value>",
	Short: "Rate a movie from 0.5 to 10 in half steps",
	Long: `Rate a movie. The movie is a TMDB id or a title; titles are matched
against your rated movies first and then searched.

Examples:
  reelrate rate 603 9
  reelrate rate "the matrix" 8.5
  reelrate rate alien 0        # same as unrate`,
	Args: cobra.MinimumNArgs(2),
	RunE: runRateCmd,
}

var unrateCmd = &cobra.Command{
	Use:   "unrate <movie>...",
	Short: "Remove your rating for a movie",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runUnrateCmd,
}

func init() {
	rootCmd.AddCommand(ratedCmd)
	rootCmd.AddCommand(rateCmd)
	rootCmd.AddCommand(unrateCmd)
}

func runRatedCmd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := a.LoadGenres(ctx); err != nil {
		printFailure(os.Stderr, err)
		return err
	}
	rated, err := a.ShowRated(ctx)
	if err != nil {
		printFailure(os.Stderr, err)
		return err
	}

	cards := ratedCards(rated, a.Genres())
	if jsonOutput {
		printJSON(cards)
		return nil
	}
	if len(cards) == 0 {
		fmt.Println("No rated movies")
		return nil
	}
	fmt.Printf("Rated movies (%d):\n\n", len(cards))
	printCards(os.Stdout, cards)
	return nil
}

func ratedCards(rated []tmdb.RatedMovie, genres display.GenreTable) []display.Card {
	movies := make([]tmdb.Movie, len(rated))
	values := make(map[int64]float64, len(rated))
	for i, r := range rated {
		movies[i] = r.Movie
		values[r.ID] = r.Rating
	}
	return display.Cards(movies, genres, values)
}

func runRateCmd(cmd *cobra.Command, args []string) error {
	value, err := strconv.ParseFloat(args[len(args)-1], 64)
	if err != nil {
		return fmt.Errorf("invalid rating %q", args[len(args)-1])
	}
	if value != 0 && !ratings.ValidRating(value) {
		return fmt.Errorf("rating must be between %.1f and %.0f in steps of %.1f", ratings.Step, ratings.MaxRating, ratings.Step)
	}
	ref := strings.Join(args[:len(args)-1], " ")

	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	movie, err := resolveMovie(ctx, a, ref)
	if err != nil {
		return err
	}

	stop := a.Bus.Handle(4, func(e events.Event) { printEvent(os.Stderr, e, a.Cards) }, events.EventNotification)
	defer stop()

	err = a.Ratings.SetRating(ctx, movie, value, func(v float64) {
		if jsonOutput {
			printJSON(map[string]any{"id": movie.ID, "title": movie.Title, "rating": v})
			return
		}
		if v == 0 {
			fmt.Printf("Removed rating for %q\n", movie.Title)
			return
		}
		fmt.Printf("Rated %q %s (%.1f)\n", movie.Title, display.Stars(v), v)
	})
	return err
}

func runUnrateCmd(cmd *cobra.Command, args []string) error {
	ref := strings.Join(args, " ")

	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	movie, err := resolveMovie(ctx, a, ref)
	if err != nil {
		return err
	}

	stop := a.Bus.Handle(4, func(e events.Event) { printEvent(os.Stderr, e, a.Cards) }, events.EventNotification)
	defer stop()

	return a.Ratings.ClearRating(ctx, movie, func() {
		if jsonOutput {
			printJSON(map[string]any{"id": movie.ID, "title": movie.Title, "rating": 0})
			return
		}
		fmt.Printf("Removed rating for %q\n", movie.Title)
	})
}

// resolveMovie turns a TMDB id or a title into a movie. Titles are
// matched against the rated movies first, then searched in the catalog.
func resolveMovie(ctx context.Context, a *app.App, ref string) (tmdb.Movie, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return tmdb.Movie{}, errors.New("movie must not be empty")
	}

	if _, err := a.Ratings.RatedMovies(ctx); err != nil {
		printFailure(os.Stderr, err)
	}
	if m, ok := a.Ratings.Cache().Lookup(ref); ok {
		return m.Movie.Movie, nil
	}

	if id, err := strconv.ParseInt(ref, 10, 64); err == nil && id > 0 {
		movie, err := a.Catalog.GetMovie(ctx, id)
		if err != nil {
			printFailure(os.Stderr, err)
			return tmdb.Movie{}, err
		}
		return *movie, nil
	}

	page, err := a.Search.Search(ctx, ref)
	if err != nil {
		printFailure(os.Stderr, err)
		return tmdb.Movie{}, err
	}
	if len(page.Results) == 0 {
		return tmdb.Movie{}, fmt.Errorf("no movie matches %q", ref)
	}
	return page.Results[0], nil
}
