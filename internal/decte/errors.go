package decte

import (
	"errors"
	"fmt"
	"strings"
)

// RewriteError is returned by Rewrite in strict mode.
type RewriteError struct {
	// Code identifies the problem category.
	Code Code

	// Message is a human-readable description.
	Message string

	// CTEs names the definitions involved, if any.
	CTEs []string
}

// Code categorizes rewrite warnings and errors.
type Code string

const (
	// CodeMalformedChunk indicates a WITH chunk not of the form name AS (...).
	CodeMalformedChunk Code = "MALFORMED_CHUNK"

	// CodeMissingSelect indicates a WITH clause with no main select after it.
	CodeMissingSelect Code = "MISSING_SELECT"

	// CodeDuplicateCTE indicates a name defined more than once.
	CodeDuplicateCTE Code = "DUPLICATE_CTE"

	// CodeCycleDetected indicates CTEs that reference each other.
	CodeCycleDetected Code = "CYCLE_DETECTED"

	// CodeBlockedByCycle indicates a CTE left un-inlined because it depends
	// on a cycle.
	CodeBlockedByCycle Code = "BLOCKED_BY_CYCLE"
)

// Error implements the error interface.
func (e *RewriteError) Error() string {
	if len(e.CTEs) > 0 {
		return fmt.Sprintf("%s: %s (cte=%s)", e.Code, e.Message, strings.Join(e.CTEs, ","))
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsCycleError returns true if the error reports a CTE reference cycle.
// Uses errors.As to handle wrapped errors.
func IsCycleError(err error) bool {
	var re *RewriteError
	if errors.As(err, &re) {
		return re.Code == CodeCycleDetected
	}
	return false
}

// IsMalformedError returns true if the error reports a WITH clause that
// could not be fully parsed: a malformed chunk or a missing main select.
// Uses errors.As to handle wrapped errors.
func IsMalformedError(err error) bool {
	var re *RewriteError
	if errors.As(err, &re) {
		return re.Code == CodeMalformedChunk || re.Code == CodeMissingSelect
	}
	return false
}
