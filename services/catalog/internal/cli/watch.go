package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
)

func newWatchCmd(rt *runtime) *cobra.Command {
	var (
		flags    importFlags
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch <file.csv|file.xlsx>",
		Short: "Re-import a spreadsheet on an interval",
		Long: `Imports the file immediately and then every --interval until interrupted.
A failed run is logged and retried on the next tick.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval == 0 {
				interval = rt.cfg.WatchInterval
			}
			if interval < 0 {
				return fmt.Errorf("--interval must be positive")
			}
			return rt.watch(cmd.Context(), args[0], flags, interval)
		},
	}
	flags.register(cmd)
	cmd.Flags().DurationVar(&interval, "interval", 0, "Time between imports (default CATALOG_WATCH_INTERVAL)")
	return cmd
}

func (rt *runtime) watch(ctx context.Context, file string, flags importFlags, interval time.Duration) error {
	rt.logger.Info("watching import file",
		slog.String("file", file),
		slog.Duration("interval", interval),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := rt.runImport(ctx, file, flags); err != nil && ctx.Err() == nil {
			rt.logger.Error("scheduled import failed", slog.String("error", err.Error()))
		}

		select {
		case <-ctx.Done():
			rt.logger.Info("watch stopped")
			return nil
		case <-ticker.C:
		}
	}
}
