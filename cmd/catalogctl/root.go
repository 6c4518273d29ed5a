package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/evora/catalog/config"
	"github.com/evora/catalog/internal/app"
	"github.com/evora/catalog/internal/logging"
)

// cli carries flag values and the services opened for one invocation
type cli struct {
	sources   []string
	storeType string
	storePath string
	logLevel  string

	services *app.App
	closeLog func() error
}

// run executes one command line and releases every resource it opened
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	c := &cli{}
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	return errors.Join(err, c.close())
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:               "catalogctl",
		Short:             "Search, filter and compare the storefront catalog",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		Long: `catalogctl loads the catalog the same way the server does (configured sources,
then the embedded fallback) and shares the server's compare store.`,
	}

	flags := root.PersistentFlags()
	flags.StringSliceVar(&c.sources, "source", nil, "catalog source, repeatable; overrides catalog.sources")
	flags.StringVar(&c.storeType, "store", "", "compare store type: file, sqlite or memory")
	flags.StringVar(&c.storePath, "store-path", "", "compare store directory (file) or database (sqlite)")
	flags.StringVar(&c.logLevel, "log-level", "warn", "log level written to stderr")

	root.AddCommand(
		c.searchCmd(),
		c.suggestCmd(),
		c.facetsCmd(),
		c.showCmd(),
		c.statusCmd(),
		c.compareCmd(),
		c.exportCmd(),
	)
	return root
}

// setup loads configuration, applies flag overrides and opens the services
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cannot load config: %w", err)
	}
	if len(c.sources) > 0 {
		cfg.Catalog.Sources = c.sources
	}
	if c.storeType != "" {
		cfg.Compare.Store.Type = c.storeType
	}
	if c.storePath != "" {
		cfg.Compare.Store.Path = c.storePath
	}

	logger, closeLog, err := logging.New(logging.Config{Level: c.logLevel, Format: cfg.Log.Format}, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	c.closeLog = closeLog

	services, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	c.services = services

	if notice := services.Catalog.Status().Notice; notice != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", notice)
	}
	return nil
}

func (c *cli) close() error {
	var errs []error
	if c.services != nil {
		errs = append(errs, c.services.Close())
	}
	if c.closeLog != nil {
		errs = append(errs, c.closeLog())
	}
	return errors.Join(errs...)
}
