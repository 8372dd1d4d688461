package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/decteify/internal/config"
	"github.com/roach88/decteify/internal/decte"
	"github.com/roach88/decteify/internal/digest"
	"github.com/roach88/decteify/internal/store"
	"github.com/roach88/decteify/internal/verify"
)

// RewriteOptions holds flags for the rewrite command.
type RewriteOptions struct {
	*RootOptions
	OutputDir string
	Stdout    bool
	Strict    bool
	Verify    string // dialect
	DSN       string
	History   string // SQLite path

	// IDGenerator allows overriding the history run ID generator (for testing).
	// If nil, the store defaults to UUIDv7Generator.
	IDGenerator store.IDGenerator
}

// RewriteReport is the JSON payload of a successful rewrite.
type RewriteReport struct {
	Input    string        `json:"input"`
	Output   string        `json:"output,omitempty"`
	Verified string        `json:"verified,omitempty"`
	RunID    string        `json:"run_id,omitempty"`
	Result   *decte.Result `json:"result"`
}

// NewRewriteCommand creates the rewrite command.
func NewRewriteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RewriteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rewrite <file>",
		Short: "Inline the CTEs of a SQL file",
		Long: `Rewrite a SQL file so its top-level WITH clause is gone and every CTE is
inlined where it is referenced.

The result is written to <stem>_decteified<ext> next to the input, or into
the directory given by -o. The suffix can be changed in the config file.

Exit codes:
  0 - Rewrite written
  1 - Strict rewrite refused the input, or the output failed verification
  2 - Command error (missing input, unwritable output, etc.)

Examples:
  decteify rewrite report.sql
  decteify rewrite report.sql -o ./out
  decteify rewrite report.sql --stdout
  decteify rewrite report.sql --strict --verify tsql
  decteify rewrite report.sql --history ./decteify.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRewrite(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.OutputDir, "output", "o", "", "output directory (default: next to the input)")
	cmd.Flags().BoolVar(&opts.Stdout, "stdout", false, "print the rewrite instead of writing a file")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail on reference cycles and malformed CTEs")
	cmd.Flags().StringVar(&opts.Verify, "verify", "", "check the output against a dialect (tsql|sqlite|sqlserver|postgres); sqlite without --dsn checks syntax only")
	cmd.Flags().StringVar(&opts.DSN, "dsn", "", "connection string for --verify")
	cmd.Flags().StringVar(&opts.History, "history", "", "record the run in this SQLite database")

	return cmd
}

// effectiveConfig returns the loaded configuration with flag overrides.
func (o *RewriteOptions) effectiveConfig() *config.Config {
	cfg := *o.Config
	if o.OutputDir != "" {
		cfg.OutputDir = o.OutputDir
	}
	if o.Strict {
		cfg.Strict.FailOnCycle = true
		cfg.Strict.FailOnMalformed = true
	}
	if o.Verify != "" {
		cfg.Verify.Dialect = o.Verify
	}
	if o.DSN != "" {
		cfg.Verify.DSN = o.DSN
	}
	if o.History != "" {
		cfg.History.DB = o.History
	}
	return &cfg
}

func runRewrite(opts *RewriteOptions, input string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	cfg := opts.effectiveConfig()
	logger := opts.Logger
	ctx := commandContext(cmd)

	raw, err := readInput(formatter, input)
	if err != nil {
		return err
	}

	res, err := decte.Rewrite(raw, cfg.RewriteOptions(logger))
	for _, w := range res.Warnings {
		logger.Warn("rewrite warning", "code", w.Code, "cte", w.CTE, "message", w.Message)
	}
	if err != nil {
		return fail(formatter, ExitFailure, ErrCodeRewriteFailed, err.Error(), res.Warnings)
	}

	report := &RewriteReport{Input: input, Result: res}

	if cfg.Verify.Dialect != "" {
		if err := verifySQL(ctx, formatter, cfg.Verify, res.SQL); err != nil {
			return err
		}
		report.Verified = cfg.Verify.Dialect
		formatter.VerboseLog("Verified output with %s", cfg.Verify.Dialect)
	}

	if !opts.Stdout {
		report.Output = cfg.OutputPath(input)
		if err := writeOutput(report.Output, res.SQL); err != nil {
			return fail(formatter, ExitCommandError, ErrCodeWriteFailed, err.Error(), nil)
		}
		logger.Info("rewrote file", "input", input, "output", report.Output, "inlined", len(res.Order))
	}

	if cfg.History.DB != "" {
		run, err := recordRun(ctx, cfg.History.DB, opts.IDGenerator, store.Run{
			InputPath:       input,
			OutputPath:      report.Output,
			InputHash:       digest.Input(raw),
			OutputHash:      digest.Output(res.SQL),
			CTECount:        len(res.Definitions),
			InlinedCount:    len(res.Order),
			Warnings:        warningCodes(res.Warnings),
			VerifiedDialect: report.Verified,
		})
		if err != nil {
			return fail(formatter, ExitCommandError, ErrCodeHistory, err.Error(), nil)
		}
		report.RunID = run.ID
		formatter.VerboseLog("Recorded run %s in %s", run.ID, cfg.History.DB)
	}

	if formatter.JSON() {
		return formatter.SuccessWithWarnings(report, res.Warnings)
	}

	formatter.Warnings(res.Warnings)
	w := formatter.Writer
	if opts.Stdout {
		fmt.Fprintln(w, res.SQL)
		return nil
	}
	fmt.Fprintf(w, "✓ Rewrote %s -> %s (%d of %d CTE(s) inlined)\n",
		input, report.Output, len(res.Order), len(res.Definitions))
	return nil
}

// readInput reads a SQL file, reporting a missing file as E005.
func readInput(formatter *OutputFormatter, path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", fail(formatter, ExitCommandError, ErrCodeNotFound, fmt.Sprintf("input file not found: %s", path), nil)
	}
	if err != nil {
		return "", fail(formatter, ExitCommandError, ErrCodeGeneric, fmt.Sprintf("reading input: %v", err), nil)
	}
	return string(data), nil
}

// writeOutput writes sql followed by a newline, creating the directory.
func writeOutput(path, sql string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sql+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// verifySQL checks sql against the configured dialect. Rejected SQL exits
// 1; a verifier that cannot be built or reached exits 2.
func verifySQL(ctx context.Context, formatter *OutputFormatter, vc config.VerifyConfig, sql string) error {
	v, err := verify.New(vc.Dialect, vc.DSN)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeVerifySetup, err.Error(), nil)
	}

	err = v.Verify(ctx, sql)
	var ve *verify.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ve):
		return fail(formatter, ExitFailure, ErrCodeVerifyFailed, err.Error(), ve.Problems)
	default:
		return fail(formatter, ExitCommandError, ErrCodeVerifySetup, err.Error(), nil)
	}
}

// recordRun appends run to the history database at path.
func recordRun(ctx context.Context, path string, ids store.IDGenerator, run store.Run) (store.Run, error) {
	var storeOpts []store.Option
	if ids != nil {
		storeOpts = append(storeOpts, store.WithIDGenerator(ids))
	}
	st, err := store.Open(path, storeOpts...)
	if err != nil {
		return store.Run{}, err
	}
	defer st.Close()

	return st.WriteRun(ctx, run)
}

func warningCodes(warnings []decte.Warning) []string {
	codes := make([]string, len(warnings))
	for i, w := range warnings {
		codes[i] = string(w.Code)
	}
	return codes
}

// commandContext returns cmd's context, or Background when none was set.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
