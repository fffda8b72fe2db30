// Package commands implements the hastrava command line.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/ericfisherdev/hastrava/internal/config"
	"github.com/ericfisherdev/hastrava/internal/observability"
)

// Execute runs the root command with the given context and arguments.
func Execute(ctx context.Context, args []string, version string) error {
	var shutdownTracing func(context.Context) error

	cmd := &cli.Command{
		Name:    "hastrava",
		Usage:   "Publish recent Strava activities as Home Assistant sensors",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to a TOML config file",
				Sources: cli.EnvVars(config.EnvPrefix + "CONFIG"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug|info|warn|error)",
				Value: slog.LevelInfo.String(),
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "log format (text|json)",
				Value: "text",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			shutdown, err := instrument(cmd)
			shutdownTracing = shutdown
			return ctx, err
		},
		After: func(ctx context.Context, _ *cli.Command) error {
			if shutdownTracing == nil {
				return nil
			}
			return shutdownTracing(context.WithoutCancel(ctx))
		},
		Commands: []*cli.Command{
			serveCommand(),
			syncCommand(),
			authCommand(),
		},
	}

	return cmd.Run(ctx, args)
}

func instrument(cmd *cli.Command) (func(context.Context) error, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cmd.String("log-level"))); err != nil {
		return nil, err
	}

	shutdown, err := observability.Instrument(level, cmd.String("log-format"))
	if err != nil {
		return nil, fmt.Errorf("failed to set up observability: %w", err)
	}

	return shutdown, nil
}

// loadConfig reads the configuration named by the --config flag.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
