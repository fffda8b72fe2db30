package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"
)

func syncCommand() *cli.Command {
	return &cli.Command{
		Name:   "sync",
		Usage:  "Run one sync cycle and exit",
		Action: syncAction,
	}
}

func syncAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	a, err := openApp(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	if err := a.poller.SyncOnce(ctx); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	snap := a.poller.Snapshot()
	fmt.Printf("Published %d sensors for %d activities\n", len(snap.Sensors), len(snap.Activities))
	return nil
}
