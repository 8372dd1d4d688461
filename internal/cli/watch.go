package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/decteify/internal/watch"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	OutputDir string
	Debounce  time.Duration
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Rewrite .sql files as they are created or changed",
		Long: `Watch a directory and rewrite every .sql file that is created or written.

Files whose name already carries the output suffix are skipped, so the
output directory may be the watched directory itself. Runs until
interrupted.

Example:
  decteify watch ./queries -o ./queries/out`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.OutputDir, "output", "o", "", "output directory (default: next to each input)")
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", watch.DefaultDebounce, "wait this long for writes to settle")

	return cmd
}

func runWatch(opts *WatchOptions, dir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg := *opts.Config
	if opts.OutputDir != "" {
		cfg.OutputDir = opts.OutputDir
	}

	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return fail(formatter, ExitCommandError, ErrCodeNotFound, fmt.Sprintf("directory not found: %s", dir), nil)
	}

	w, err := watch.New(dir, &cfg,
		watch.WithDebounce(opts.Debounce),
		watch.WithLogger(opts.Logger),
		watch.WithOnRewrite(func(e watch.Event) {
			reportWatchEvent(formatter, e)
		}),
	)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			opts.Logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	if !formatter.JSON() {
		fmt.Fprintf(formatter.Writer, "Watching %s. Press Ctrl-C to stop.\n", dir)
	}
	return w.Run(ctx)
}

// reportWatchEvent prints one line per processed file, or one JSON
// response per file in JSON mode.
func reportWatchEvent(formatter *OutputFormatter, e watch.Event) {
	if e.Err != nil {
		_ = formatter.Error(ErrCodeRewriteFailed, fmt.Sprintf("%s: %v", e.Input, e.Err), nil)
		return
	}
	if formatter.JSON() {
		_ = formatter.SuccessWithWarnings(RewriteReport{
			Input:  e.Input,
			Output: e.Output,
			Result: e.Result,
		}, e.Result.Warnings)
		return
	}
	formatter.Warnings(e.Result.Warnings)
	fmt.Fprintf(formatter.Writer, "✓ %s -> %s\n", e.Input, e.Output)
}
