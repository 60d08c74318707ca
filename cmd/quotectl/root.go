package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/jsamuelsen/daily-quote/internal/adapters/storage"
	"github.com/jsamuelsen/daily-quote/internal/bootstrap"
	"github.com/jsamuelsen/daily-quote/internal/platform/config"
	"github.com/jsamuelsen/daily-quote/internal/platform/logging"
)

// deps are the factories commands use. Tests replace them.
type deps struct {
	loadConfig func(profile string) (*config.Config, error)
	buildOpts  func() bootstrap.Options
}

func defaultDeps() deps {
	return deps{
		loadConfig: config.Load,
		buildOpts: func() bootstrap.Options {
			// Collectors are registered on a private registry: nothing scrapes a CLI.
			return bootstrap.Options{Registerer: prometheus.NewRegistry(), OpenStore: storage.Open}
		},
	}
}

// cli holds state shared by all subcommands once the root pre-run has loaded it.
type cli struct {
	deps deps

	profile string
	verbose bool

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd(d deps) *cobra.Command {
	c := &cli{deps: d}

	cmd := &cobra.Command{
		Use:   "quotectl",
		Short: "Inspect and warm the daily quote cache",
		Long: `quotectl runs the daily quote pipeline in-process against the configured
store: it looks quotes up, fetches missing ones from the upstream site and
caches them. It reads the same configuration as the service.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.load,
	}

	defaultProfile := os.Getenv("APP_ENVIRONMENT")
	if defaultProfile == "" {
		defaultProfile = "local"
	}

	cmd.PersistentFlags().StringVar(&c.profile, "profile", defaultProfile, "configuration profile (configs/<profile>.yaml)")
	cmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log at debug level")

	cmd.AddCommand(
		newGetCmd(c),
		newMigrateCmd(c),
		newLocateCmd(c),
	)

	return cmd
}

// load reads .env and the configuration and builds the logger. It does not
// validate: commands that touch the store call requireValid.
func (c *cli) load(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := c.deps.loadConfig(c.profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level := cfg.Log.Level
	if c.verbose {
		level = "debug"
	}

	c.cfg = cfg
	c.logger = logging.NewWithWriter(&logging.Config{
		Level:   level,
		Format:  "text",
		Service: "quotectl",
		Version: cfg.App.Version,
	}, cmd.ErrOrStderr())

	return nil
}

func (c *cli) requireValid() error {
	if err := c.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

// withPipeline builds the pipeline, runs fn and closes the store.
func (c *cli) withPipeline(ctx context.Context, fn func(*bootstrap.Pipeline) error) (err error) {
	if err := c.requireValid(); err != nil {
		return err
	}

	p, err := bootstrap.Build(ctx, c.cfg, c.logger, c.deps.buildOpts())
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := p.Close(context.WithoutCancel(ctx)); closeErr != nil && err == nil {
			err = fmt.Errorf("closing store: %w", closeErr)
		}
	}()

	return fn(p)
}
