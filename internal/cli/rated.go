package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/butterflies/internal/model"
)

// RatedResult lists the butterflies a user rated, lowest rating first.
type RatedResult []model.Butterfly

// WriteText implements TextWriter.
func (r RatedResult) WriteText(w io.Writer) error {
	if len(r) == 0 {
		_, err := fmt.Fprintln(w, "No rated butterflies.")
		return err
	}
	for _, b := range r {
		if _, err := fmt.Fprintf(w, "%s  %s (%s)\n", b.ID, b.CommonName, b.Species); err != nil {
			return err
		}
	}
	return nil
}

// NewRatedCommand creates the rated command.
func NewRatedCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rated <user-id>",
		Short: "List the butterflies a user rated",
		Long: `List the butterflies rated by a user, ordered by rating ascending.

Examples:
  butterflies rated OOWzUaHLsK
  butterflies rated OOWzUaHLsK --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return report(f, runRated(rootOpts, cmd, f, args[0]))
		},
	}
	return cmd
}

func runRated(opts *RootOptions, cmd *cobra.Command, f *OutputFormatter, userID string) (err error) {
	sess, err := opts.openSession(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeSession(sess, &err)

	butterflies, err := sess.svc.RatedButterflies(commandContext(cmd), userID)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to query ratings", err)
	}
	return f.Success(RatedResult(butterflies))
}
