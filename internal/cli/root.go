package cli

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/roach88/butterflies/internal/config"
	"github.com/roach88/butterflies/internal/ids"
	"github.com/roach88/butterflies/internal/logging"
	"github.com/roach88/butterflies/internal/metrics"
	"github.com/roach88/butterflies/internal/schema"
	"github.com/roach88/butterflies/internal/service"
	"github.com/roach88/butterflies/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Driver     string // overrides store.driver when set
	Database   string // overrides store.path when set

	// IDs allows overriding the record id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDs ids.Generator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the butterflies CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "butterflies",
		Short: "Butterfly ratings service",
		Long:  "Serve and administer a small catalogue of butterflies rated by users.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				// No usable format yet, so the error is reported as text.
				f := &OutputFormatter{Format: "text", Writer: cmd.OutOrStdout()}
				return report(f, NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats)))
			}
			return nil
		},
	}

	// main prints errors so each one is reported once.
	cmd.SilenceErrors = true

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "store driver (json|sqlite|bolt)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to the data file")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewRatedCommand(opts))
	cmd.AddCommand(NewClearRatingsCommand(opts))

	return cmd
}

// loadConfig reads the config file and applies flag overrides on top of
// the file and environment.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, err
	}
	if o.Driver != "" {
		cfg.Store.Driver = o.Driver
	}
	if o.Database != "" {
		cfg.Store.Path = o.Database
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// session holds everything a command needs to talk to the store.
type session struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   store.Store
	metrics *metrics.Metrics
	svc     *service.Service
}

// openSession loads config, builds the logger writing to logOut and opens
// the store. Callers must Close the session.
func (o *RootOptions) openSession(logOut io.Writer) (*session, error) {
	return o.newSession(logOut, false)
}

// openFreshSession is openSession after deleting whatever the configured
// driver keeps at the store path, so an unreadable store can be replaced.
func (o *RootOptions) openFreshSession(logOut io.Writer) (*session, error) {
	return o.newSession(logOut, true)
}

func (o *RootOptions) newSession(logOut io.Writer, fresh bool) (*session, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	logger, err := logging.New(cfg.Logging, o.Verbose, logOut)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to build logger", err)
	}

	if fresh {
		logger.Debug("removing store files", zap.String("driver", cfg.Store.Driver), zap.String("path", cfg.Store.Path))
		if err := store.Remove(cfg.Store.Driver, cfg.Store.Path); err != nil {
			return nil, WrapExitError(ExitFailure, "failed to remove store", err)
		}
	}

	logger.Debug("opening store", zap.String("driver", cfg.Store.Driver), zap.String("path", cfg.Store.Path))
	st, err := store.Open(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open store", err)
	}

	v, err := schema.New()
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitFailure, "failed to load schema", err)
	}

	gen := o.IDs
	if gen == nil {
		gen = ids.UUIDv7Generator{}
	}
	m := metrics.New()

	return &session{
		cfg:     cfg,
		logger:  logger,
		store:   st,
		metrics: m,
		svc:     service.New(st, v, gen, service.WithLogger(logger), service.WithMetrics(m)),
	}, nil
}

// Close closes the store and flushes the logger.
func (s *session) Close() error {
	err := s.store.Close()
	// Sync on a terminal returns EINVAL on some platforms.
	_ = s.logger.Sync()
	return err
}

// closeSession folds the session's close error into err.
func closeSession(s *session, err *error) {
	*err = multierr.Append(*err, s.Close())
}
