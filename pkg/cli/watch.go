package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/funvibe/shapeshift/internal/watch"
)

func (a *app) watchCommand() *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch [manifest...]",
		Short: "Regenerate whenever a manifest changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.watch(ctx, args, debounce)
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before regenerating")
	return cmd
}

func (a *app) watch(ctx context.Context, args []string, debounce time.Duration) error {
	paths, err := manifestPaths(args)
	if err != nil {
		return err
	}
	regenerate := func() error {
		err := a.run(ctx, paths, true)
		if errors.Is(err, errFailed) {
			// Diagnostics are printed; keep watching for a fix.
			return nil
		}
		return err
	}
	if err := regenerate(); err != nil {
		return err
	}

	w, err := watch.New(watch.Config{Files: paths, Debounce: debounce}, a.logger.Named("watch"))
	if err != nil {
		return err
	}
	a.logger.Info("watching manifests", zap.Strings("paths", paths))
	return w.Watch(ctx, func(path string) error {
		a.logger.Info("manifest changed", zap.String("path", path))
		return regenerate()
	})
}
