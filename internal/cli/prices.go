package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/polycache/internal/prices"
)

// PricesOptions holds flags for the prices command.
type PricesOptions struct {
	*RootOptions
	Token string
	Date  string
	Force bool
}

// NewPricesCommand creates the prices command.
func NewPricesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PricesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "prices",
		Short: "Show price history for an outcome token",
		Long: `Show the cached price history of one outcome token, fetching the full
history from the CLOB when nothing is cached.

Examples:
  polycache prices --token 7123...
  polycache prices --token 7123... --date "2026-01-01 00:00:00"`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrices(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Token, "token", "", "CLOB token id (required)")
	_ = cmd.MarkFlagRequired("token")
	cmd.Flags().StringVar(&opts.Date, "date", "", "single sample date (YYYY-MM-DD HH:MM:SS)")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "fetch from remote even when cached")

	return cmd
}

func runPrices(opts *PricesOptions, cmd *cobra.Command) error {
	formatter := NewOutputFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	a, err := openApp(opts.RootOptions, formatter)
	if err != nil {
		return err
	}
	defer a.Close()

	rows, err := a.prices.GetPrices(cmd.Context(), prices.Query{
		ClobTokenID: opts.Token,
		Date:        opts.Date,
		Force:       opts.Force,
	})
	if err != nil {
		return failStore(formatter, "failed to get prices", err)
	}
	return formatter.Success(rows)
}
