package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/butterflies/internal/api"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string

	// Listener allows serving on a pre-bound listener (for testing).
	// If nil, the server listens on Addr or the configured address.
	Listener net.Listener
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long: `Run the butterfly ratings HTTP server until SIGINT or SIGTERM.

The listen address comes from --addr, then BUTTERFLIES_ADDR or PORT,
then server.addr in the config file (default :8000).

Examples:
  butterflies serve
  butterflies serve --addr 127.0.0.1:9000 --driver sqlite --db ./ratings.db
  PORT=3000 butterflies serve --config ./butterflies.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			return report(f, runServe(opts, cmd))
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides config)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) (err error) {
	sess, err := opts.openSession(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeSession(sess, &err)

	addr := sess.cfg.Server.Addr
	if opts.Addr != "" {
		addr = opts.Addr
	}

	srv := api.NewServer(sess.svc,
		api.WithLogger(sess.logger),
		api.WithMetrics(sess.metrics),
		api.WithTimeouts(sess.cfg.GetReadTimeout(), sess.cfg.GetWriteTimeout(), sess.cfg.GetShutdownTimeout()),
	)

	ln := opts.Listener
	if ln == nil {
		ln, err = net.Listen("tcp", addr)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to listen", err)
		}
	}

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			sess.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	sess.logger.Info("server starting",
		zap.String("addr", ln.Addr().String()),
		zap.String("driver", sess.cfg.Store.Driver),
		zap.String("db", sess.cfg.Store.Path),
	)
	if opts.Format == "text" {
		fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s. Press Ctrl-C to stop.\n", ln.Addr())
	}

	if err := srv.Serve(ctx, ln); err != nil {
		return WrapExitError(ExitFailure, "server error", err)
	}

	sess.logger.Info("server stopped gracefully")
	return nil
}
