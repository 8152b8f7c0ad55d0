package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/polycache/internal/events"
)

// StatusOptions holds flags for the status command.
type StatusOptions struct {
	*RootOptions
	EventID    string
	Researched bool
	Active     bool
	Closed     bool
}

// StatusResult reports which flags were written.
type StatusResult struct {
	EventID string          `json:"event_id" yaml:"event_id"`
	Updated map[string]bool `json:"updated" yaml:"updated"`
}

func (r StatusResult) String() string {
	s := "Updated event " + r.EventID + ":"
	for _, flag := range []string{events.FlagActive, events.FlagClosed, events.FlagResearched} {
		if v, ok := r.Updated[flag]; ok {
			s += " " + flag + "=" + strconv.FormatBool(v)
		}
	}
	return s
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatusOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Set status flags on a cached event",
		Long: `Set the researched, active or closed flag of a cached event.
Only flags given on the command line are written.

Examples:
  polycache status --id 123 --researched
  polycache status --id 123 --active=false --closed`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.EventID, "id", "", "event id (required)")
	_ = cmd.MarkFlagRequired("id")
	cmd.Flags().BoolVar(&opts.Researched, events.FlagResearched, false, "mark researched")
	cmd.Flags().BoolVar(&opts.Active, events.FlagActive, false, "mark active")
	cmd.Flags().BoolVar(&opts.Closed, events.FlagClosed, false, "mark closed")

	return cmd
}

func runStatus(opts *StatusOptions, cmd *cobra.Command) error {
	formatter := NewOutputFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	values := map[string]bool{
		events.FlagResearched: opts.Researched,
		events.FlagActive:     opts.Active,
		events.FlagClosed:     opts.Closed,
	}
	updates := map[string]bool{}
	for flag, v := range values {
		if cmd.Flags().Changed(flag) {
			updates[flag] = v
		}
	}
	if len(updates) == 0 {
		return formatter.Fail(ExitCommandError, CodeInput, "nothing to update: pass --researched, --active or --closed", nil)
	}

	a, err := openApp(opts.RootOptions, formatter)
	if err != nil {
		return err
	}
	defer a.Close()

	st := a.events.Store()
	for flag, v := range updates {
		n, err := st.SetFlag(cmd.Context(), flag, opts.EventID, v)
		if err != nil {
			return failStore(formatter, "failed to update status", err)
		}
		if n == 0 {
			return formatter.Fail(ExitFailure, CodeNotFound, fmt.Sprintf("event %s is not cached", opts.EventID), nil)
		}
	}
	return formatter.Success(StatusResult{EventID: opts.EventID, Updated: updates})
}
