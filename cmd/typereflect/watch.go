package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"typereflect/internal/gen"
	"typereflect/internal/watch"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [patterns...]",
		Short: "Regenerate providers when sources change",
		Long: `Generate once, then watch the scanned package directories and generate again
whenever a Go source file changes. Changes are batched for watch.debounce.
Generated providers, tests and files hidden from the go tool are ignored.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return a.watch(ctx, cmd, args)
		},
	}
}

func (a *app) watch(ctx context.Context, cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()

	graph, err := a.generate(w, args)
	if err != nil {
		return err
	}

	watcher, err := watch.New(gen.PackageDirs(graph),
		watch.WithDebounce(a.cfg.Watch.Debounce),
		watch.WithSuffix(a.cfg.Suffix),
		watch.WithLogger(a.logger),
	)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "watching for changes, press Ctrl+C to stop")

	return watcher.Run(ctx, func(_ context.Context, files []string) error {
		a.logger.Info("regenerating", zap.Strings("changed", files))
		_, err := a.generate(w, args)
		return err
	})
}
