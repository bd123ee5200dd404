package cli

import (
	"errors"
	"strings"

	"github.com/wronai/pactfix/internal/configloader"
)

// Exit codes for pactfix.
const (
	// ExitSuccess indicates a clean run.
	ExitSuccess = 0

	// ExitIssues indicates issues at or above the fail-on threshold, or
	// files that could not be processed.
	ExitIssues = 1

	// ExitUsage indicates invalid command-line usage or configuration.
	ExitUsage = 2

	// ExitInternal indicates an internal failure.
	ExitInternal = 3
)

// ErrIssuesFound is returned when the run breaches the fail-on threshold.
var ErrIssuesFound = errors.New("issues found")

// exitError attaches an exit code to an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func usageError(err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: ExitUsage, err: err}
}

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if errors.Is(err, ErrIssuesFound) {
		return ExitIssues
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	var validationErr *configloader.ValidationError
	if errors.As(err, &validationErr) {
		return ExitUsage
	}

	// Cobra reports unknown commands and flags as plain errors.
	msg := err.Error()
	if strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag") {
		return ExitUsage
	}

	return ExitInternal
}
