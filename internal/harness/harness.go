package harness

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/decteify/internal/decte"
)

// Result is the outcome of running a case.
type Result struct {
	// Pass indicates every expectation held.
	Pass bool `json:"pass"`

	// Errors contains one message per failed expectation.
	Errors []string `json:"errors,omitempty"`

	// Rewrite is the pipeline result. Never nil.
	Rewrite *decte.Result `json:"rewrite"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{Pass: true, Errors: []string{}}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}

// Run rewrites the case input and checks every expectation.
func Run(c *Case) *Result {
	rewritten, err := decte.Rewrite(c.Input, c.Options.RewriteOptions())

	result := NewResult()
	result.Rewrite = rewritten

	checkError(result, c.Expect.Error, err)

	if c.Expect.SQL != "" {
		want := strings.TrimSpace(c.Expect.SQL)
		if rewritten.SQL != want {
			result.AddError("sql mismatch:\n  expected: %q\n  actual:   %q", want, rewritten.SQL)
		}
	}

	for _, s := range c.Expect.Contains {
		if !strings.Contains(rewritten.SQL, s) {
			result.AddError("expected output to contain %q", s)
		}
	}
	for _, s := range c.Expect.NotContains {
		if strings.Contains(rewritten.SQL, s) {
			result.AddError("expected output not to contain %q", s)
		}
	}

	if c.Expect.Order != nil && !slices.Equal(c.Expect.Order, rewritten.Order) {
		result.AddError("order mismatch: expected %v, actual %v", c.Expect.Order, rewritten.Order)
	}

	if c.Expect.Warnings != nil {
		codes := WarningCodes(rewritten)
		if !slices.Equal(c.Expect.Warnings, codes) {
			result.AddError("warnings mismatch: expected %v, actual %v", c.Expect.Warnings, codes)
		}
	}

	return result
}

func checkError(result *Result, want string, err error) {
	if want == "" {
		if err != nil {
			result.AddError("unexpected error: %v", err)
		}
		return
	}

	var re *decte.RewriteError
	if !errors.As(err, &re) {
		result.AddError("expected error %s, got %v", want, err)
		return
	}
	if string(re.Code) != want {
		result.AddError("expected error %s, got %s", want, re.Code)
	}
}

// WarningCodes returns the code of every warning, in order.
func WarningCodes(res *decte.Result) []string {
	codes := make([]string, len(res.Warnings))
	for i, w := range res.Warnings {
		codes[i] = string(w.Code)
	}
	return codes
}
