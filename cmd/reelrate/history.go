package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/vmunix/reelrate/internal/events"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent events",
	Args:  cobra.NoArgs,
	RunE:  runHistoryCmd,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	historyCmd.Flags().StringP("type", "t", "", "Only show events of this type")
	_ = historyCmd.RegisterFlagCompletionFunc("type", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return events.DefaultRegistry().Types(), cobra.ShellCompDirectiveNoFileComp
	})
}

// historyItem is the --json shape of one logged event.
type historyItem struct {
	ID         int64     `json:"id"`
	Type       string    `json:"type"`
	EntityType string    `json:"entity_type"`
	EntityID   int64     `json:"entity_id"`
	Summary    string    `json:"summary"`
	OccurredAt time.Time `json:"occurred_at"`
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	eventType, _ := cmd.Flags().GetString("type")

	registry := events.DefaultRegistry()
	if eventType != "" && !registry.Known(eventType) {
		return fmt.Errorf("unknown event type %q (known: %s)", eventType, strings.Join(registry.Types(), ", "))
	}

	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	log := a.EventLog()
	if log == nil {
		return fmt.Errorf("event history is disabled (events.persist = false)")
	}
	var raw []events.RawEvent
	if eventType != "" {
		raw, err = log.RecentOfType(ctx, eventType, limit)
	} else {
		raw, err = log.Recent(ctx, limit)
	}
	if err != nil {
		return fmt.Errorf("failed to read events: %w", err)
	}

	items := make([]historyItem, 0, len(raw))
	for _, r := range raw {
		summary := ""
		if e, err := registry.Unmarshal(r); err == nil {
			summary = summarize(e)
		}
		items = append(items, historyItem{
			ID:         r.ID,
			Type:       r.EventType,
			EntityType: r.EntityType,
			EntityID:   r.EntityID,
			Summary:    summary,
			OccurredAt: r.OccurredAt,
		})
	}

	if jsonOutput {
		printJSON(items)
		return nil
	}
	printHistory(os.Stdout, items, time.Now())
	return nil
}

func printHistory(w io.Writer, items []historyItem, now time.Time) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No events")
		return
	}

	fmt.Fprintf(w, "Recent Events (%d):\n\n", len(items))
	fmt.Fprintf(w, "  %-10s %-20s %-12s %s\n", "TIME", "TYPE", "ENTITY", "SUMMARY")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 70))

	for _, it := range items {
		entity := fmt.Sprintf("%s/%d", it.EntityType, it.EntityID)
		fmt.Fprintf(w, "  %-10s %-20s %-12s %s\n", formatTimeAgo(now.Sub(it.OccurredAt)), it.Type, entity, it.Summary)
	}
}

// summarize describes a logged event in one line.
func summarize(e events.Event) string {
	switch ev := e.(type) {
	case *events.SearchStarted:
		if ev.Page > 0 {
			return fmt.Sprintf("%q page %d", ev.Query, ev.Page)
		}
		return fmt.Sprintf("%q", ev.Query)
	case *events.SearchCompleted:
		return fmt.Sprintf("%q: %d results, page %d/%d", ev.Result.Query, ev.Result.TotalResults, ev.Result.Page, ev.Result.TotalPages)
	case *events.SearchEmpty:
		return fmt.Sprintf("%q: no results", ev.Query)
	case *events.SearchFailed:
		return fmt.Sprintf("%q: %s", ev.Query, ev.Message)
	case *events.PageSettled:
		if ev.OK {
			return fmt.Sprintf("%q page %d", ev.Query, ev.Page)
		}
		return fmt.Sprintf("%q page %d failed", ev.Query, ev.Page)
	case *events.RatedListed:
		return fmt.Sprintf("%d movies", len(ev.Movies))
	case *events.RatingChanged:
		if ev.Value == 0 {
			return fmt.Sprintf("%q cleared", ev.Title)
		}
		return fmt.Sprintf("%q rated %.1f", ev.Title, ev.Value)
	case *events.Notification:
		return ev.Title + ": " + ev.Message
	}
	return ""
}

func formatTimeAgo(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
