package cli

import (
	"github.com/spf13/cobra"
)

// NewClearRatingsCommand creates the clear-ratings command.
func NewClearRatingsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear-ratings",
		Short: "Delete every rating",
		Long: `Delete every rating. Butterflies and users are kept.

Example:
  butterflies clear-ratings --db ./data/db.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return report(f, runClearRatings(rootOpts, cmd, f))
		},
	}
	return cmd
}

func runClearRatings(opts *RootOptions, cmd *cobra.Command, f *OutputFormatter) (err error) {
	sess, err := opts.openSession(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeSession(sess, &err)

	if err := sess.svc.ClearRatings(commandContext(cmd)); err != nil {
		return WrapExitError(ExitFailure, "failed to clear ratings", err)
	}
	return f.Success("Deleted!")
}
