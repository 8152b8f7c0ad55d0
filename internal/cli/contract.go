package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/polycache/internal/contract"
)

// ContractOptions holds flags for the contract command.
type ContractOptions struct {
	*RootOptions
	EventID   string
	EventName string
	MarketID  string
	Token     string
	Prices    bool
	Download  bool
	Force     bool
}

// NewContractCommand creates the contract command.
func NewContractCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ContractOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "contract",
		Short: "Inspect one event: summary, outcome tokens and prices",
		Long: `Inspect one event by id or slug.

By default prints the event summary followed by each outcome token and the
outcome it trades. --prices prints price history tagged with outcomes;
--download warms the cache with markets, event and every token's prices.

Examples:
  polycache contract --name fed-decision-in-january
  polycache contract --id 123 --market 456 --prices
  polycache contract --id 123 --download`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContract(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.EventID, "id", "", "event id")
	cmd.Flags().StringVar(&opts.EventName, "name", "", "event slug")
	cmd.Flags().StringVar(&opts.MarketID, "market", "", "restrict to one market id")
	cmd.Flags().StringVar(&opts.Token, "token", "", "restrict prices to one CLOB token id")
	cmd.Flags().BoolVar(&opts.Prices, "prices", false, "print price history")
	cmd.Flags().BoolVar(&opts.Download, "download", false, "fetch and cache everything for the event")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "refetch prices even when cached")
	cmd.MarkFlagsOneRequired("id", "name")

	return cmd
}

func runContract(opts *ContractOptions, cmd *cobra.Command) error {
	formatter := NewOutputFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := cmd.Context()

	a, err := openApp(opts.RootOptions, formatter)
	if err != nil {
		return err
	}
	defer a.Close()

	c, err := contract.Resolve(ctx, a.events, a.prices, opts.EventID, opts.EventName)
	if errors.Is(err, contract.ErrNotFound) {
		return formatter.Fail(ExitFailure, CodeNotFound, "event not found", err)
	}
	if err != nil {
		return failStore(formatter, "failed to resolve contract", err)
	}

	switch {
	case opts.Download:
		if err := c.DownloadAll(ctx); err != nil {
			return failStore(formatter, "failed to download contract", err)
		}
		return formatter.Success(fmt.Sprintf("Downloaded event %s (%s)", c.EventID, c.EventName))

	case opts.Prices:
		rows, err := c.Prices(ctx, opts.MarketID, opts.Token, opts.Force)
		if err != nil {
			return failStore(formatter, "failed to get prices", err)
		}
		return formatter.Success(rows)
	}

	pairs, err := c.TokenOutcomes(ctx, opts.MarketID)
	if err != nil {
		return failStore(formatter, "failed to get outcome tokens", err)
	}
	if formatter.Format != "text" {
		return formatter.Success(pairs)
	}

	summary, err := c.Summary(ctx)
	if err != nil && !errors.Is(err, contract.ErrNotFound) {
		return failStore(formatter, "failed to get event", err)
	}
	if summary != "" {
		fmt.Fprintln(cmd.OutOrStdout(), summary)
	}
	return formatter.Success(pairs)
}
