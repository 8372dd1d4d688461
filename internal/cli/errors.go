package cli

import (
	"errors"
	"fmt"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Rewrite or check failure (strict rewrite error, rejected SQL, failed cases)
	ExitCommandError = 2 // Command error (missing input, bad config, unwritable output, etc.)
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeScanError     = "E002" // Directory scan error
	ErrCodeNoFiles       = "E003" // No input files found
	ErrCodeConfigInvalid = "E004" // Config file unreadable or invalid
	ErrCodeNotFound      = "E005" // Path not found
	ErrCodeRewriteFailed = "E006" // Strict rewrite refused the input
	ErrCodeWriteFailed   = "E007" // File write error
	ErrCodeVerifyFailed  = "E008" // Target engine rejected the output
	ErrCodeVerifySetup   = "E009" // Verifier could not be created or reached
	ErrCodeHistory       = "E010" // History database error
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)

	// Reported is set when the error was already written to the command
	// output, so the entry point need not print it again.
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil and ExitFailure (1) if the error is not an
// ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// fail reports an error through the formatter and returns the matching
// ExitError.
func fail(formatter *OutputFormatter, exitCode int, code, message string, details any) error {
	_ = formatter.Error(code, message, details)
	err := NewExitError(exitCode, fmt.Sprintf("%s: %s", code, message))
	err.Reported = true
	return err
}
