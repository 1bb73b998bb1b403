package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/vmunix/reelrate/internal/display"
)

var movieCmd = &cobra.Command{
	Use:   "movie <id>",
	Short: "Show movie details",
	Args:  cobra.ExactArgs(1),
	RunE:  runMovieCmd,
}

var genresCmd = &cobra.Command{
	Use:   "genres",
	Short: "List movie genres",
	Args:  cobra.NoArgs,
	RunE:  runGenresCmd,
}

func init() {
	rootCmd.AddCommand(movieCmd)
	rootCmd.AddCommand(genresCmd)
}

func runMovieCmd(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid movie id %q", args[0])
	}

	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	movie, err := a.Catalog.GetMovie(ctx, id)
	if err != nil {
		printFailure(os.Stderr, err)
		return err
	}
	if _, err := a.Ratings.RatedMovies(ctx); err != nil {
		printFailure(os.Stderr, err)
	}
	rating, _ := a.Ratings.Cache().Rating(movie.ID)

	// Detail responses carry full genre objects, so no table is needed.
	card := display.NewCard(*movie, display.NewGenreTable(movie.Genres), rating)
	if jsonOutput {
		printJSON(card)
		return nil
	}
	printCard(os.Stdout, card)
	return nil
}

func runGenresCmd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	genres, err := a.Catalog.Genres(ctx)
	if err != nil {
		printFailure(os.Stderr, err)
		return err
	}

	if jsonOutput {
		printJSON(genres)
		return nil
	}
	for _, g := range genres {
		fmt.Printf("  %-6d %s\n", g.ID, g.Name)
	}
	return nil
}
