// Package cmd implements the iconfilter CLI commands and Kong parser setup.
package cmd

import "errors"

// Process exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// ExitError wraps an error with a process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e == nil || e.Err == nil {
		return "exit"
	}

	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.Err
}

// ExitCode maps an error returned by Execute to a process exit code:
// 0 for nil, the embedded code for an ExitError, 1 for anything else.
func ExitCode(err error) int {
	if err == nil {
		return exitOK
	}

	var ee *ExitError
	if errors.As(err, &ee) && ee != nil && ee.Code >= 0 {
		return ee.Code
	}

	return exitFailure
}

// exitPanic carries kong's exit code out of parser.Parse.
type exitPanic struct{ code int }
