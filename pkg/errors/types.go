package errors

import (
	"errors"
	"fmt"
	"time"
)

// Exit codes for scripting integration.
const (
	// ExitSuccess indicates all operations completed successfully.
	ExitSuccess = 0
	// ExitPartialFailure indicates some records failed while others succeeded.
	ExitPartialFailure = 1
	// ExitFailure indicates every record failed or a critical error occurred.
	ExitFailure = 2
	// ExitConfigError indicates the command could not start because of
	// invalid configuration or a missing package manager.
	ExitConfigError = 3
	// ExitCancelled indicates the user stopped the batch before it finished.
	ExitCancelled = 130
)

// ExitError represents a command termination with a specific exit code.
//
// Fields:
//   - Code: Exit code (use the Exit* constants)
//   - Message: Human-readable error message
//   - Err: Underlying error that caused this exit, may be nil
//
// Example:
//
//	return &ExitError{
//	    Code:    ExitConfigError,
//	    Message: "failed to load config",
//	    Err:     err,
//	}
type ExitError struct {
	Code    int
	Message string
	Err     error
}

// Error implements the error interface.
//
// Returns the Message field if set, otherwise the underlying error's
// message, or a default message with the exit code.
func (e *ExitError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit code %d", e.Code)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError with the given code and underlying error.
//
// Parameters:
//   - code: Exit code
//   - err: Underlying error, may be nil
//
// Returns:
//   - *ExitError: New exit error
func NewExitError(code int, err error) *ExitError {
	return &ExitError{Code: code, Err: err}
}

// NewExitErrorf creates an ExitError with the given code and formatted message.
//
// Parameters:
//   - code: Exit code
//   - format: Printf-style format string
//   - args: Format arguments
//
// Returns:
//   - *ExitError: New exit error with formatted message
func NewExitErrorf(code int, format string, args ...any) *ExitError {
	return &ExitError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// GetExitCode extracts the exit code from an error.
//
// If err is nil, returns ExitSuccess. A PartialSuccessError maps to
// ExitPartialFailure, an ExitError to its own code, anything else to
// ExitFailure.
//
// Parameters:
//   - err: The error to extract code from
//
// Returns:
//   - int: Exit code
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if _, ok := IsPartialSuccess(err); ok {
		return ExitPartialFailure
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// IsExitError checks if err is an ExitError and returns it.
func IsExitError(err error) (*ExitError, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr, true
	}
	return nil, false
}

// PartialSuccessError indicates that some records were processed while
// others failed.
//
// Fields:
//   - Succeeded: Count of records that were updated or already current
//   - Failed: Count of records that failed
//   - Names: Names of the failed records
type PartialSuccessError struct {
	Succeeded int
	Failed    int
	Names     []string
}

// Error implements the error interface.
func (e *PartialSuccessError) Error() string {
	return fmt.Sprintf("%d succeeded, %d failed", e.Succeeded, e.Failed)
}

// NewPartialSuccessError creates a PartialSuccessError.
//
// Parameters:
//   - succeeded: Number of successful records
//   - failed: Number of failed records
//   - names: Names of the failed records
//
// Returns:
//   - *PartialSuccessError: New partial success error
func NewPartialSuccessError(succeeded, failed int, names []string) *PartialSuccessError {
	return &PartialSuccessError{Succeeded: succeeded, Failed: failed, Names: names}
}

// IsPartialSuccess checks if err is a PartialSuccessError and returns it.
func IsPartialSuccess(err error) (*PartialSuccessError, bool) {
	var pse *PartialSuccessError
	if errors.As(err, &pse) {
		return pse, true
	}
	return nil, false
}

// TimeoutError indicates an external command ran past its time limit and
// was killed.
//
// Fields:
//   - Command: Command line that timed out
//   - Timeout: The limit that was exceeded
//   - Err: Error reported by the process runner
type TimeoutError struct {
	Command string
	Timeout time.Duration
	Err     error
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: timed out after %s", e.Command, e.Timeout)
}

// Unwrap returns the underlying error.
func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether err is, or wraps, a TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// MalformedRecordError indicates a package record that cannot be passed to
// an update invocation.
//
// Fields:
//   - ID: Identifier of the record, if any
//   - Reason: What is missing
type MalformedRecordError struct {
	ID     string
	Reason string
}

// Error implements the error interface.
func (e *MalformedRecordError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("malformed record %q: %s", e.ID, e.Reason)
	}
	return "malformed record: " + e.Reason
}

// IsMalformedRecord checks if err is a MalformedRecordError and returns it.
func IsMalformedRecord(err error) (*MalformedRecordError, bool) {
	var me *MalformedRecordError
	if errors.As(err, &me) {
		return me, true
	}
	return nil, false
}
