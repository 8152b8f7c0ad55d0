package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/polycache/internal/backfill"
	"github.com/roach88/polycache/internal/events"
	"github.com/roach88/polycache/internal/normalize"
)

// windowFlags are the post-read shaping flags shared by events and markets.
type windowFlags struct {
	SortBy       string
	FilterColumn string
	DTRColumn    string
	MaxDTR       int
}

func (w *windowFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&w.SortBy, "sort", string(events.SortByDTR), "sort ascending by dtr|volume")
	cmd.Flags().StringVar(&w.FilterColumn, "filter-col", string(normalize.ColumnContractEnd), "drop rows whose event_end|contract_end is unknown")
	cmd.Flags().StringVar(&w.DTRColumn, "dtr-col", string(normalize.ColumnContractEnd), "date column used for days-to-resolution")
	cmd.Flags().IntVar(&w.MaxDTR, "max-dtr", events.DefaultMaxDTR, "keep rows resolving within this many days")
}

func (w *windowFlags) window() events.Window {
	return events.Window{
		SortBy:       events.SortKey(w.SortBy),
		FilterColumn: normalize.DateColumn(w.FilterColumn),
		DTRColumn:    normalize.DateColumn(w.DTRColumn),
		MaxDTR:       w.MaxDTR,
	}
}

// EventsOptions holds flags for the events command.
type EventsOptions struct {
	*RootOptions
	windowFlags
	EventID   string
	EventName string
	Inactive  bool
	Mode      string
	Force     bool
}

// NewEventsCommand creates the events command.
func NewEventsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EventsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List cached events, fetching from Gamma on a miss",
		Long: `List events with their days-to-resolution (dtr).

With --id or --name a single event is looked up; otherwise every cached
event is listed, and an empty cache is filled from the configured catalog
fetch (top by volume, or soon resolving).

Examples:
  polycache events
  polycache events --name fed-decision-in-january
  polycache events --mode soon --max-dtr 3 --force
  polycache events --inactive --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvents(opts, cmd)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.EventID, "id", "", "event id")
	cmd.Flags().StringVar(&opts.EventName, "name", "", "event slug")
	cmd.Flags().BoolVar(&opts.Inactive, "inactive", false, "list inactive events instead of active ones")
	cmd.Flags().StringVar(&opts.Mode, "mode", "", "catalog fetch for this run: top|soon (default from config)")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "fetch from remote even when cached")

	return cmd
}

func runEvents(opts *EventsOptions, cmd *cobra.Command) error {
	formatter := NewOutputFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	a, err := openApp(opts.RootOptions, formatter)
	if err != nil {
		return err
	}
	defer a.Close()

	q := events.EventsQuery{
		EventID:   opts.EventID,
		EventName: opts.EventName,
		Inactive:  opts.Inactive,
		Window:    opts.window(),
		Force:     opts.Force,
	}
	if opts.Mode != "" {
		fetch, err := catalogFetch(a, events.Mode(opts.Mode))
		if err != nil {
			return formatter.Fail(ExitCommandError, CodeInput, "invalid --mode", err)
		}
		q.Fetch = fetch
	}

	rows, err := a.events.GetEvents(cmd.Context(), q)
	if err != nil {
		return failStore(formatter, "failed to get events", err)
	}
	formatter.VerboseLog("%d events", len(rows))
	return formatter.Success(rows)
}

func catalogFetch(a *app, mode events.Mode) (backfill.FetchFunc[events.Payload], error) {
	switch mode {
	case events.ModeTop:
		return a.catalog.Top, nil
	case events.ModeSoon:
		return a.catalog.Soon, nil
	default:
		return nil, fmt.Errorf("unknown mode %q: must be top or soon", mode)
	}
}

// MarketsOptions holds flags for the markets command.
type MarketsOptions struct {
	*RootOptions
	windowFlags
	EventID    string
	MarketID   string
	MarketName string
	Force      bool
}

// NewMarketsCommand creates the markets command.
func NewMarketsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MarketsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "markets",
		Short: "List cached markets, fetching their event from Gamma on a miss",
		Long: `List markets with their outcomes and days-to-resolution (dtr).

Examples:
  polycache markets --event-id 123
  polycache markets --event-id 123 --market-id 456 --format yaml
  polycache markets --name fed-decision-in-january --sort volume`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMarkets(opts, cmd)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.EventID, "event-id", "", "parent event id")
	cmd.Flags().StringVar(&opts.MarketID, "market-id", "", "market id")
	cmd.Flags().StringVar(&opts.MarketName, "name", "", "market slug (also used as the event slug when fetching)")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "fetch from remote even when cached")

	return cmd
}

func runMarkets(opts *MarketsOptions, cmd *cobra.Command) error {
	formatter := NewOutputFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	a, err := openApp(opts.RootOptions, formatter)
	if err != nil {
		return err
	}
	defer a.Close()

	rows, err := a.events.GetMarkets(cmd.Context(), events.MarketsQuery{
		EventID:    opts.EventID,
		MarketID:   opts.MarketID,
		MarketName: opts.MarketName,
		Window:     opts.window(),
		Force:      opts.Force,
	})
	if err != nil {
		return failStore(formatter, "failed to get markets", err)
	}
	formatter.VerboseLog("%d markets", len(rows))
	return formatter.Success(rows)
}
