package decte

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/decteify/internal/cte"
	"github.com/roach88/decteify/internal/rewrite"
)

// Options control a rewrite.
type Options struct {
	// GuardDivisions wraps every divisor in NULLIF(x, 0).
	GuardDivisions bool

	// FailOnCycle makes Rewrite return an error when CTEs reference each
	// other.
	FailOnCycle bool

	// FailOnMalformed makes Rewrite return an error for skipped WITH chunks
	// and for a WITH clause with no main select.
	FailOnMalformed bool

	// Logger receives debug output. Nil discards it.
	Logger *slog.Logger
}

// DefaultOptions returns the permissive defaults used by Transform.
func DefaultOptions() Options {
	return Options{GuardDivisions: true}
}

// Warning is a non-fatal problem found during a rewrite.
type Warning struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	CTE     string `json:"cte,omitempty"`
}

// Result is the outcome of a rewrite.
type Result struct {
	// SQL is the rewritten query, trimmed.
	SQL string `json:"sql"`

	// Definitions lists CTE names as written, in declaration order.
	Definitions []string `json:"definitions"`

	// Order lists the names that were inlined, in inlining order.
	Order []string `json:"order"`

	// Excluded lists names left un-inlined because of a cycle.
	Excluded []string `json:"excluded,omitempty"`

	// Dependencies maps each name to the names its body references.
	Dependencies map[string][]string `json:"dependencies"`

	// Cycles describes every reference cycle.
	Cycles []cte.CycleWarning `json:"cycles,omitempty"`

	Warnings []Warning `json:"warnings,omitempty"`
}

// Transform rewrites raw with DefaultOptions and returns the SQL only.
func Transform(raw string) string {
	res, _ := Rewrite(raw, DefaultOptions())
	return res.SQL
}

// Rewrite removes the top-level WITH clause from raw by inlining each CTE
// where it is referenced.
//
// The returned Result is never nil. An error is only returned when opts
// asks for strict behaviour, and then it is a *RewriteError.
func Rewrite(raw string, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	ext := cte.Extract(raw)
	res := &Result{
		Definitions:  ext.Names(),
		Order:        []string{},
		Dependencies: map[string][]string{},
	}

	for _, chunk := range ext.Skipped {
		res.warn(logger, Warning{
			Code:    CodeMalformedChunk,
			Message: fmt.Sprintf("skipped WITH chunk not of the form name AS (...): %q", chunk),
		})
	}
	if ext.MissingSelect {
		res.warn(logger, Warning{
			Code:    CodeMissingSelect,
			Message: "WITH clause has no main SELECT; query left as is",
		})
	}
	for _, name := range ext.Duplicates {
		res.warn(logger, Warning{
			Code:    CodeDuplicateCTE,
			Message: fmt.Sprintf("CTE %s defined more than once; last definition used", name),
			CTE:     name,
		})
	}

	if len(ext.Definitions) == 0 {
		res.SQL = finish(raw, opts)
		return res, strictError(res, opts)
	}

	defs := ext.Definitions
	names := make(map[string]string, len(defs))
	bodies := make(map[string]string, len(defs))
	for _, def := range defs {
		names[def.Key] = def.Name
		bodies[def.Key] = def.Body
	}

	deps := cte.Dependencies(defs)
	for key, list := range deps.Lists() {
		named := make([]string, len(list))
		for i, dep := range list {
			named[i] = names[dep]
		}
		res.Dependencies[names[key]] = named
	}

	ordering := cte.Order(defs, deps)
	res.Cycles = cte.AnalyzeCycles(defs, deps)

	inCycle := make(map[string]bool)
	for _, cycle := range res.Cycles {
		res.warn(logger, Warning{
			Code:    CodeCycleDetected,
			Message: cycle.Message,
			CTE:     strings.Join(cycle.Members, ","),
		})
		for _, name := range cycle.Members {
			inCycle[name] = true
		}
	}
	for _, key := range ordering.Excluded {
		name := names[key]
		res.Excluded = append(res.Excluded, name)
		if !inCycle[name] {
			res.warn(logger, Warning{
				Code:    CodeBlockedByCycle,
				Message: fmt.Sprintf("CTE %s depends on a cycle and was not inlined", name),
				CTE:     name,
			})
		}
	}

	main := ext.Main
	for i, key := range ordering.Keys {
		name, body := names[key], bodies[key]
		main = rewrite.Inline(main, name, body)
		for _, later := range ordering.Keys[i+1:] {
			bodies[later] = rewrite.Inline(bodies[later], name, body)
		}
		res.Order = append(res.Order, name)
		logger.Debug("inlined cte", "cte", name, "position", i+1)
	}

	res.SQL = finish(main, opts)
	return res, strictError(res, opts)
}

func (r *Result) warn(logger *slog.Logger, w Warning) {
	r.Warnings = append(r.Warnings, w)
	logger.Debug("rewrite warning", "code", w.Code, "cte", w.CTE, "message", w.Message)
}

func finish(text string, opts Options) string {
	if opts.GuardDivisions {
		text = rewrite.GuardDivisions(text)
	}
	return strings.TrimSpace(text)
}

// strictError returns the first warning that opts asks to treat as fatal.
func strictError(res *Result, opts Options) error {
	for _, w := range res.Warnings {
		switch {
		case opts.FailOnMalformed && (w.Code == CodeMalformedChunk || w.Code == CodeMissingSelect):
		case opts.FailOnCycle && w.Code == CodeCycleDetected:
		default:
			continue
		}
		err := &RewriteError{Code: w.Code, Message: w.Message}
		if w.CTE != "" {
			err.CTEs = strings.Split(w.CTE, ",")
		}
		return err
	}
	return nil
}
