package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/decteify/internal/decte"
	"github.com/roach88/decteify/internal/verify"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Dialect string
	DSN     string
}

// VerifyReport is the JSON payload of a successful verification.
type VerifyReport struct {
	Input   string `json:"input"`
	Dialect string `json:"dialect"`
	SQL     string `json:"sql"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify <file>",
		Short: "Rewrite a SQL file and check the result parses on a target engine",
		Long: fmt.Sprintf(`Rewrite a SQL file in memory and hand the result to a target engine
without running it. Nothing is written.

Dialects: %s
  tsql      - offline T-SQL parse, no database needed
  sqlite    - EXPLAIN; without --dsn, syntax only against an empty database
  sqlserver - SET PARSEONLY ON, requires --dsn
  postgres  - EXPLAIN, requires --dsn

Exit codes:
  0 - Output accepted
  1 - Output rejected
  2 - Command error (missing input, unknown dialect, connection failure)

Examples:
  decteify verify report.sql --dialect tsql
  decteify verify report.sql --dialect sqlserver --dsn "sqlserver://sa:pw@localhost?database=master"`,
			strings.Join(verify.Dialects(), ", ")),
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Dialect, "dialect", "", "target dialect (default: verify.dialect from config)")
	cmd.Flags().StringVar(&opts.DSN, "dsn", "", "connection string (default: verify.dsn from config)")

	return cmd
}

func runVerify(opts *VerifyOptions, input string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	vc := opts.Config.Verify
	if opts.Dialect != "" {
		vc.Dialect = opts.Dialect
	}
	if opts.DSN != "" {
		vc.DSN = opts.DSN
	}
	if vc.Dialect == "" {
		return fail(formatter, ExitCommandError, ErrCodeVerifySetup,
			fmt.Sprintf("no dialect given (supported: %s)", strings.Join(verify.Dialects(), ", ")), nil)
	}

	raw, err := readInput(formatter, input)
	if err != nil {
		return err
	}

	res, err := decte.Rewrite(raw, opts.Config.RewriteOptions(opts.Logger))
	if err != nil {
		return fail(formatter, ExitFailure, ErrCodeRewriteFailed, err.Error(), res.Warnings)
	}

	if err := verifySQL(commandContext(cmd), formatter, vc, res.SQL); err != nil {
		return err
	}

	report := VerifyReport{Input: input, Dialect: vc.Dialect, SQL: res.SQL}
	if formatter.JSON() {
		return formatter.SuccessWithWarnings(report, res.Warnings)
	}
	formatter.Warnings(res.Warnings)
	fmt.Fprintf(formatter.Writer, "✓ %s accepted the rewrite of %s\n", vc.Dialect, input)
	return nil
}
