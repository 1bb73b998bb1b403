package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vmunix/reelrate/internal/tmdb"
)

var searchCmd = &cobra.Command{
	Use:   "search [flags] <query>...",
	Short: "Search movies by title",
	Long: `Search movies by title.

Examples:
  reelrate search "The Matrix"
  reelrate search --page 2 alien`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearchCmd,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntP("page", "p", 0, "Result page (1-based)")
}

func runSearchCmd(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	page, _ := cmd.Flags().GetInt("page")
	if query == "" {
		return fmt.Errorf("query must not be empty")
	}

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
	// Personal ratings only decorate the cards.
	if _, err := a.Ratings.RatedMovies(ctx); err != nil {
		printFailure(os.Stderr, err)
	}

	var result *tmdb.SearchPage
	if page > 0 {
		result, err = a.Search.GoToPage(ctx, page, query)
	} else {
		result, err = a.Search.Search(ctx, query)
	}
	if err != nil {
		printFailure(os.Stderr, err)
		return err
	}

	cards := a.Cards(result.Results)
	if jsonOutput {
		printJSON(newSearchOutput(result, cards))
		return nil
	}
	printSearchPage(os.Stdout, result, cards)
	return nil
}
