package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/polycache/internal/tags"
)

// TagsOptions holds flags for the tags command.
type TagsOptions struct {
	*RootOptions
	ID    string
	Name  string
	Force bool
}

// NewTagsCommand creates the tags command.
func NewTagsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TagsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Resolve tag names to ids",
		Long: `Resolve a tag by id or name (case-insensitive), or list every cached tag.

Examples:
  polycache tags --name politics
  polycache tags --id 2
  polycache tags --force`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTags(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "tag id (wins over --name)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "tag label or slug")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "fetch from remote even when cached")

	return cmd
}

func runTags(opts *TagsOptions, cmd *cobra.Command) error {
	formatter := NewOutputFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	a, err := openApp(opts.RootOptions, formatter)
	if err != nil {
		return err
	}
	defer a.Close()

	rows, err := a.tags.GetTags(cmd.Context(), tags.Query{ID: opts.ID, Name: opts.Name, Force: opts.Force})
	if err != nil {
		return failStore(formatter, "failed to get tags", err)
	}
	if len(rows) == 0 && (opts.ID != "" || opts.Name != "") {
		return formatter.Fail(ExitFailure, CodeNotFound, "tag not found", nil)
	}
	return formatter.Success(rows)
}
