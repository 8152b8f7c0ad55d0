package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/polycache/internal/cronrunner"
)

// ExpireOptions holds flags for the expire command.
type ExpireOptions struct {
	*RootOptions
	Watch    bool
	Schedule string
}

// ExpireResult reports one expiry pass.
type ExpireResult struct {
	Expired int64 `json:"expired" yaml:"expired"`
}

func (r ExpireResult) String() string {
	return fmt.Sprintf("Expired %d events", r.Expired)
}

// NewExpireCommand creates the expire command.
func NewExpireCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExpireOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "expire",
		Short: "Close events whose contract end has passed",
		Long: `Mark every active event whose contract_end is in the past as inactive
and closed. Runs once, or on a cron schedule with --watch.

Examples:
  polycache expire
  polycache expire --watch
  polycache expire --watch --schedule "0 */15 * * * *"`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpire(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "keep running and expire on a schedule")
	cmd.Flags().StringVar(&opts.Schedule, "schedule", "", "cron spec for --watch (default from config cron.expire)")

	return cmd
}

func runExpire(opts *ExpireOptions, cmd *cobra.Command) error {
	formatter := NewOutputFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	a, err := openApp(opts.RootOptions, formatter)
	if err != nil {
		return err
	}
	defer a.Close()

	expire := func(ctx context.Context) (ExpireResult, error) {
		n, err := a.events.Store().ExpireEvents(ctx, a.clock.Now())
		return ExpireResult{Expired: n}, err
	}

	if !opts.Watch {
		res, err := expire(cmd.Context())
		if err != nil {
			return failStore(formatter, "failed to expire events", err)
		}
		return formatter.Success(res)
	}

	spec := opts.Schedule
	if spec == "" {
		spec = a.cfg.Cron.Expire
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := cronrunner.New(a.log.Named("cron"), ctx)
	if _, err := runner.Add("expire", spec, func(ctx context.Context) {
		res, err := expire(ctx)
		if err != nil {
			a.log.Error("expire pass failed", zap.Error(err))
			return
		}
		a.log.Info("expire pass", zap.Int64("expired", res.Expired))
	}); err != nil {
		return formatter.Fail(ExitCommandError, CodeInput, fmt.Sprintf("invalid schedule %q", spec), err)
	}

	formatter.VerboseLog("expiring on schedule %q", spec)
	runner.Start()
	<-ctx.Done()
	runner.Stop()
	return nil
}
