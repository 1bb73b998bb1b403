package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"github.com/vmunix/reelrate/internal/app"
	"github.com/vmunix/reelrate/internal/events"
	"github.com/vmunix/reelrate/internal/tmdb"
	"golang.org/x/sync/errgroup"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Interactive search and rating",
	Long: `Interactive mode. Type to search; input is debounced like a search box.

Commands:
  :page N        show page N of the current query
  :search        back to the search tab (runs the default query)
  :rated         show your rated movies
  :rate N V      rate result N with V (0.5 to 10, 0 clears)
  :unrate N      remove your rating for result N
  :quit          exit`,
	Args: cobra.NoArgs,
	RunE: runBrowseCmd,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

// browseAction is one parsed input line.
type browseAction struct {
	kind  string // "query", "page", "search", "rated", "rate", "unrate", "quit"
	text  string
	index int
	value float64
}

var errUnknownCommand = errors.New("unknown command")

func parseBrowseLine(line string) (browseAction, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, ":") {
		return browseAction{kind: "query", text: line}, nil
	}

	fields := strings.Fields(line[1:])
	if len(fields) == 0 {
		return browseAction{}, errUnknownCommand
	}

	switch name := fields[0]; name {
	case "q", "quit":
		return browseAction{kind: "quit"}, nil
	case "search", "rated":
		return browseAction{kind: name}, nil
	case "page":
		if len(fields) != 2 {
			return browseAction{}, errors.New("usage: :page N")
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 1 {
			return browseAction{}, fmt.Errorf("invalid page %q", fields[1])
		}
		return browseAction{kind: "page", index: n}, nil
	case "rate":
		if len(fields) != 3 {
			return browseAction{}, errors.New("usage: :rate N VALUE")
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 1 {
			return browseAction{}, fmt.Errorf("invalid result number %q", fields[1])
		}
		v, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return browseAction{}, fmt.Errorf("invalid rating %q", fields[2])
		}
		return browseAction{kind: "rate", index: n, value: v}, nil
	case "unrate":
		if len(fields) != 2 {
			return browseAction{}, errors.New("usage: :unrate N")
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 1 {
			return browseAction{}, fmt.Errorf("invalid result number %q", fields[1])
		}
		return browseAction{kind: "unrate", index: n}, nil
	}
	return browseAction{}, fmt.Errorf("%w: %s", errUnknownCommand, fields[0])
}

// syncWriter serializes writes from the event handler and the input loop.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func runBrowseCmd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	out := &syncWriter{w: os.Stdout}
	stop := a.Bus.Handle(64, func(e events.Event) { printEvent(out, e, a.Cards) })
	defer stop()

	if err := a.Start(ctx); err != nil {
		printFailure(os.Stderr, err)
		return err
	}

	return browse(ctx, a, os.Stdin, out)
}

// browse reads input lines until EOF, :quit or cancellation. Plain lines
// feed the debounced search; commands act immediately.
func browse(ctx context.Context, a *app.App, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	queries := make(chan string)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Run(gctx, queries) })
	g.Go(func() error {
		defer close(queries)
		for {
			select {
			case <-gctx.Done():
				return nil
			case line, ok := <-lines:
				if !ok {
					return nil
				}
				action, err := parseBrowseLine(line)
				if err != nil {
					fmt.Fprintln(out, err)
					continue
				}
				if action.kind == "quit" {
					return nil
				}
				if action.kind == "query" {
					select {
					case queries <- action.text:
					case <-gctx.Done():
						return nil
					}
					continue
				}
				handleBrowseAction(gctx, a, action, out)
			}
		}
	})

	return g.Wait()
}

// handleBrowseAction runs a command. Search and rating failures reach the
// user through published events.
func handleBrowseAction(ctx context.Context, a *app.App, action browseAction, out io.Writer) {
	switch action.kind {
	case "page":
		query := a.Search.Query()
		if query == "" {
			query = a.Search.DefaultQuery()
		}
		_, _ = a.Search.GoToPage(ctx, action.index, query)
	case "search":
		_, _ = a.ShowSearch(ctx)
	case "rated":
		rated, err := a.ShowRated(ctx)
		if err != nil {
			printFailure(out, err)
			return
		}
		cards := ratedCards(rated, a.Genres())
		if len(cards) == 0 {
			fmt.Fprintln(out, "No rated movies")
			return
		}
		fmt.Fprintf(out, "Rated movies (%d):\n\n", len(cards))
		printCards(out, cards)
	case "rate", "unrate":
		movie, ok := resultAt(a, action.index)
		if !ok {
			fmt.Fprintf(out, "No result %d on this page\n", action.index)
			return
		}
		if action.kind == "unrate" {
			_ = a.Ratings.ClearRating(ctx, movie, nil)
			return
		}
		_ = a.Ratings.SetRating(ctx, movie, action.value, nil)
	}
}

// resultAt returns the movie shown as result n (1-based) on the current
// page. Numbering follows the printed cards, which skip hidden movies.
func resultAt(a *app.App, n int) (tmdb.Movie, bool) {
	page := a.Search.Snapshot().Page
	if page == nil {
		return tmdb.Movie{}, false
	}
	cards := a.Cards(page.Results)
	if n < 1 || n > len(cards) {
		return tmdb.Movie{}, false
	}
	id := cards[n-1].ID
	for _, m := range page.Results {
		if m.ID == id {
			return m, true
		}
	}
	return tmdb.Movie{}, false
}
