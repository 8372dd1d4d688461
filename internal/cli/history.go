package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/decteify/internal/digest"
	"github.com/roach88/decteify/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
	Input    string // only runs whose input matches this file's content
	ID       string // show a single run
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded rewrite runs",
		Long: `List rewrite runs recorded with rewrite --history, newest first.

Examples:
  decteify history --db ./decteify.db
  decteify history --db ./decteify.db --limit 5 --format json
  decteify history --db ./decteify.db --input report.sql
  decteify history --db ./decteify.db --id 01920000-0000-7000-8000-000000000001`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the history database (default: history.db from config)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs to show (0 = all)")
	cmd.Flags().StringVar(&opts.Input, "input", "", "only runs of a file with this content")
	cmd.Flags().StringVar(&opts.ID, "id", "", "show the run with this ID")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	path := opts.Database
	if path == "" {
		path = opts.Config.History.DB
	}
	if path == "" {
		return fail(formatter, ExitCommandError, ErrCodeHistory, "no history database given (use --db)", nil)
	}
	// Opening would create an empty database; a missing path is a user error.
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return fail(formatter, ExitCommandError, ErrCodeNotFound, fmt.Sprintf("database not found: %s", path), nil)
	}

	st, err := store.Open(path)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeHistory, err.Error(), nil)
	}
	defer st.Close()

	runs, err := queryHistory(opts, st, formatter, cmd)
	if err != nil {
		return err
	}

	if formatter.JSON() {
		return formatter.Success(runs)
	}

	w := formatter.Writer
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	for _, run := range runs {
		output := run.OutputPath
		if output == "" {
			output = "(stdout)"
		}
		fmt.Fprintf(w, "%s  %s  %s -> %s  inlined %d/%d",
			run.CreatedAt.Format("2006-01-02 15:04:05"), run.ID, run.InputPath, output,
			run.InlinedCount, run.CTECount)
		if len(run.Warnings) > 0 {
			fmt.Fprintf(w, "  warnings: %s", strings.Join(run.Warnings, ","))
		}
		if run.VerifiedDialect != "" {
			fmt.Fprintf(w, "  verified: %s", run.VerifiedDialect)
		}
		fmt.Fprintln(w)
	}
	return nil
}

// queryHistory selects runs by --id, --input or, by default, recency.
func queryHistory(opts *HistoryOptions, st *store.Store, formatter *OutputFormatter, cmd *cobra.Command) ([]store.Run, error) {
	ctx := commandContext(cmd)

	switch {
	case opts.ID != "":
		run, err := st.ReadRun(ctx, opts.ID)
		if errors.Is(err, store.ErrRunNotFound) {
			return nil, fail(formatter, ExitCommandError, ErrCodeNotFound, err.Error(), nil)
		}
		if err != nil {
			return nil, fail(formatter, ExitCommandError, ErrCodeHistory, err.Error(), nil)
		}
		return []store.Run{run}, nil

	case opts.Input != "":
		raw, err := readInput(formatter, opts.Input)
		if err != nil {
			return nil, err
		}
		runs, err := st.RunsForInput(ctx, digest.Input(raw))
		if err != nil {
			return nil, fail(formatter, ExitCommandError, ErrCodeHistory, err.Error(), nil)
		}
		if opts.Limit > 0 && len(runs) > opts.Limit {
			runs = runs[:opts.Limit]
		}
		return runs, nil

	default:
		runs, err := st.ListRuns(ctx, opts.Limit)
		if err != nil {
			return nil, fail(formatter, ExitCommandError, ErrCodeHistory, err.Error(), nil)
		}
		return runs, nil
	}
}
