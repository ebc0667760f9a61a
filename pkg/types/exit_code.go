// SPDX-License-Identifier: EPL-2.0

// Package types defines cross-cutting DDD Value Types used by multiple domain
// packages (gantryfile, pyproject, etc.). These are foundation types that carry
// semantic meaning and validation but have no domain-specific dependencies.
//
// This package is a leaf dependency: it imports only the standard library.
// Domain packages import it; it never imports domain packages.
package types

import (
	"errors"
	"fmt"
	"strconv"
)

const (
	// ExitSuccess is the exit code for successful execution.
	ExitSuccess ExitCode = 0

	// ExitEngineError is the container engine's own failure code (e.g. a
	// daemon error before the containerized process ever started).
	ExitEngineError ExitCode = 125

	// ExitNotExecutable means the contained command was found but could
	// not be invoked.
	ExitNotExecutable ExitCode = 126

	// ExitNotFound means the contained command could not be found in the
	// image (e.g. the interpreter is missing from PATH).
	ExitNotFound ExitCode = 127
)

// ErrInvalidExitCode is the sentinel error wrapped by InvalidExitCodeError.
var ErrInvalidExitCode = errors.New("invalid exit code")

type (
	// ExitCode represents a process exit status code.
	// Exit codes are in the range 0-255 on POSIX systems.
	// The zero value (0) means success.
	ExitCode int

	// InvalidExitCodeError is returned when an ExitCode is outside the
	// valid range (0-255).
	InvalidExitCodeError struct {
		Value ExitCode
	}
)

// Error implements the error interface.
func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("invalid exit code %d (must be in range 0-255)", e.Value)
}

// Unwrap returns ErrInvalidExitCode so callers can use errors.Is for programmatic detection.
func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// Validate returns an error if the ExitCode is outside the valid range (0-255).
func (c ExitCode) Validate() error {
	if c < 0 || c > 255 {
		return &InvalidExitCodeError{Value: c}
	}
	return nil
}

// IsSuccess returns true if the exit code indicates successful execution.
func (c ExitCode) IsSuccess() bool { return c == ExitSuccess }

// IsEngineReserved returns true if the exit code is one of the values the
// container engine reserves for its own failures (125-127) rather than a
// status produced by the containerized application.
func (c ExitCode) IsEngineReserved() bool {
	return c >= ExitEngineError && c <= ExitNotFound
}

// IsTransient returns true if the exit code indicates a transient container
// engine error that may succeed on retry (codes 125 and 126).
func (c ExitCode) IsTransient() bool {
	return c == ExitEngineError || c == ExitNotExecutable
}

// String returns the decimal string representation of the ExitCode.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }
