package domain

import (
	"errors"
	"fmt"

	"github.com/charliek/wip/internal/constants"
)

// Sentinel errors
var (
	ErrNotConfigured    = errors.New("wip not configured")
	ErrNoDirectories    = errors.New("no directories configured")
	ErrNotARepo         = errors.New("not a git repository")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrGitError         = errors.New("git error")
	ErrItemNotFound     = errors.New("work item not found")
	ErrStorageError     = errors.New("worklist storage error")
	ErrLLMNotConfigured = errors.New("no LLM provider configured")
	ErrLLMError         = errors.New("LLM request failed")
	ErrLLMAuth          = errors.New("LLM authentication failed")
	ErrLLMRateLimit     = errors.New("LLM rate limit exceeded")
	ErrUserCancelled    = errors.New("operation cancelled by user")
	ErrInvalidArgs      = errors.New("invalid arguments")
)

// ExitCodeError wraps an error with an exit code
type ExitCodeError struct {
	Err      error
	ExitCode int
}

func (e *ExitCodeError) Error() string {
	return e.Err.Error()
}

func (e *ExitCodeError) Unwrap() error {
	return e.Err
}

// NewExitCodeError creates a new ExitCodeError
func NewExitCodeError(err error, code int) *ExitCodeError {
	return &ExitCodeError{Err: err, ExitCode: code}
}

// WrapWithExitCode wraps an error with an exit code based on the error type
func WrapWithExitCode(err error) *ExitCodeError {
	if err == nil {
		return nil
	}

	// Check if already wrapped
	var exitErr *ExitCodeError
	if errors.As(err, &exitErr) {
		return exitErr
	}

	code := errorToExitCode(err)
	return &ExitCodeError{Err: err, ExitCode: code}
}

// errorToExitCode maps errors to exit codes
func errorToExitCode(err error) int {
	switch {
	case errors.Is(err, ErrNotConfigured), errors.Is(err, ErrNoDirectories):
		return constants.ExitNotConfigured
	case errors.Is(err, ErrInvalidConfig):
		return constants.ExitInvalidConfig
	case errors.Is(err, ErrNotARepo), errors.Is(err, ErrGitError):
		return constants.ExitGitError
	case errors.Is(err, ErrItemNotFound):
		return constants.ExitItemNotFound
	case errors.Is(err, ErrStorageError):
		return constants.ExitStorageError
	case errors.Is(err, ErrLLMNotConfigured), errors.Is(err, ErrLLMError),
		errors.Is(err, ErrLLMAuth), errors.Is(err, ErrLLMRateLimit):
		return constants.ExitLLMError
	case errors.Is(err, ErrUserCancelled):
		return constants.ExitUserCancelled
	case errors.Is(err, ErrInvalidArgs):
		return constants.ExitInvalidArgs
	default:
		return constants.ExitUnknownError
	}
}

// GetExitCode returns the exit code for an error
func GetExitCode(err error) int {
	if err == nil {
		return constants.ExitSuccess
	}

	var exitErr *ExitCodeError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode
	}

	return errorToExitCode(err)
}

// Errorf creates a formatted error wrapping a sentinel error
func Errorf(sentinel error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{sentinel}, args...)...)
}
