package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"sarkar/internal/app"
	"sarkar/internal/platform/config"
	"sarkar/internal/platform/logger"
)

var errNoDatabase = errors.New("DATABASE_URL is required")

// errWriter receives logs so stdout carries only command output.
var errWriter io.Writer = os.Stderr

type rootOptions struct {
	logLevel string
	timeout  time.Duration
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "sarkarctl",
		Short:         "Operate the scheme eligibility service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error); defaults to LOG_LEVEL")
	pf.DurationVar(&opts.timeout, "timeout", 10*time.Minute, "overall operation timeout")

	cmd.AddCommand(newSeedCommand(opts))
	cmd.AddCommand(newSweepCommand(opts))
	cmd.AddCommand(newMigrateCommand())
	return cmd
}

// env loads configuration and the logger shared by every subcommand.
func (o *rootOptions) env() (config.Server, *slog.Logger) {
	cfg := config.FromEnv()
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	return cfg, logger.NewWithWriter(errWriter, cfg.Environment, cfg.LogLevel)
}

// open builds the application against the configured database. Commands that
// write must not fall back to the in-memory stores.
func (o *rootOptions) open(cmd *cobra.Command) (context.Context, context.CancelFunc, *app.App, error) {
	cfg, log := o.env()
	if cfg.DatabaseURL == "" {
		return nil, nil, nil, errNoDatabase
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
	a, err := app.New(ctx, cfg, log, app.Options{})
	if err != nil {
		cancel()
		return nil, nil, nil, err
	}
	return ctx, cancel, a, nil
}
