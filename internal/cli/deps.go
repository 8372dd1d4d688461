package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/decteify/internal/cte"
	"github.com/roach88/decteify/internal/decte"
)

// DepsReport is the JSON payload of the deps command.
type DepsReport struct {
	Definitions  []string            `json:"definitions"`
	Dependencies map[string][]string `json:"dependencies"`
	Order        []string            `json:"order"`
	Excluded     []string            `json:"excluded"`
	Cycles       []cte.CycleWarning  `json:"cycles"`
}

// NewDepsCommand creates the deps command.
func NewDepsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deps <file>",
		Short: "Show how the CTEs of a SQL file depend on each other",
		Long: `List the CTEs of a SQL file, what each one references, the order they
would be inlined in, and any reference cycles that block inlining.

Examples:
  decteify deps report.sql
  decteify deps report.sql --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeps(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runDeps(opts *RootOptions, input string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	raw, err := readInput(formatter, input)
	if err != nil {
		return err
	}

	res, _ := decte.Rewrite(raw, decte.Options{Logger: opts.Logger})
	report := DepsReport{
		Definitions:  res.Definitions,
		Dependencies: res.Dependencies,
		Order:        res.Order,
		Excluded:     nonNil(res.Excluded),
		Cycles:       res.Cycles,
	}
	if report.Cycles == nil {
		report.Cycles = []cte.CycleWarning{}
	}

	if formatter.JSON() {
		return formatter.SuccessWithWarnings(report, res.Warnings)
	}

	formatter.Warnings(res.Warnings)
	w := formatter.Writer
	if len(report.Definitions) == 0 {
		fmt.Fprintln(w, "No CTEs found.")
		return nil
	}

	fmt.Fprintf(w, "CTEs (%d): %s\n", len(report.Definitions), strings.Join(report.Definitions, ", "))
	fmt.Fprintln(w, "Dependencies:")
	for _, name := range report.Definitions {
		deps := report.Dependencies[name]
		if len(deps) == 0 {
			fmt.Fprintf(w, "  %s: (none)\n", name)
			continue
		}
		fmt.Fprintf(w, "  %s: %s\n", name, strings.Join(deps, ", "))
	}
	fmt.Fprintf(w, "Order: %s\n", strings.Join(report.Order, " -> "))
	if len(report.Excluded) > 0 {
		fmt.Fprintf(w, "Excluded: %s\n", strings.Join(report.Excluded, ", "))
	}
	for _, cycle := range report.Cycles {
		fmt.Fprintf(w, "Cycle: %s\n", strings.Join(cycle.Path, " -> "))
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
