package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/butterflies/internal/service"
)

// SeedResult reports what the seed command wrote.
type SeedResult struct {
	Butterflies int    `json:"butterflies"`
	Users       int    `json:"users"`
	Ratings     int    `json:"ratings"`
	Path        string `json:"path"`
}

// WriteText implements TextWriter.
func (r SeedResult) WriteText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Seeded %s with %d butterflies, %d users and %d ratings.\n",
		r.Path, r.Butterflies, r.Users, r.Ratings)
	return err
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Reset the store to the sample dataset",
		Long: `Replace every collection with the sample butterflies, users and ratings.

The existing store file is deleted first, so a corrupt file is replaced
rather than reported. The file and its directory are created if missing.

Examples:
  butterflies seed
  butterflies seed --driver bolt --db ./data/db.bolt`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return report(f, runSeed(rootOpts, cmd, f))
		},
	}
	return cmd
}

func runSeed(opts *RootOptions, cmd *cobra.Command, f *OutputFormatter) (err error) {
	sess, err := opts.openFreshSession(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeSession(sess, &err)

	if err := sess.svc.Seed(commandContext(cmd)); err != nil {
		return WrapExitError(ExitFailure, "failed to seed store", err)
	}

	return f.Success(SeedResult{
		Butterflies: len(service.DefaultButterflies),
		Users:       len(service.DefaultUsers),
		Ratings:     len(service.DefaultRatings),
		Path:        sess.cfg.Store.Path,
	})
}

// commandContext returns the command's context or Background.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
