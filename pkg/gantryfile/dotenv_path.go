// SPDX-License-Identifier: EPL-2.0

package gantryfile

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDotenvFilePath is the sentinel error wrapped by InvalidDotenvFilePathError.
var ErrInvalidDotenvFilePath = errors.New("invalid dotenv file path")

type (
	// DotenvFilePath is a path to a dotenv file for environment variable
	// loading, relative to the gantryfile location. Paths suffixed with '?'
	// are optional and do not cause an error when the file is missing.
	// A valid DotenvFilePath must be non-empty and not whitespace-only.
	DotenvFilePath string

	// InvalidDotenvFilePathError is returned when a DotenvFilePath value is
	// empty or whitespace-only. It wraps ErrInvalidDotenvFilePath for
	// errors.Is() compatibility.
	InvalidDotenvFilePathError struct {
		Value DotenvFilePath
	}
)

// Error implements the error interface.
func (e *InvalidDotenvFilePathError) Error() string {
	return fmt.Sprintf("invalid dotenv file path %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidDotenvFilePath for errors.Is() compatibility.
func (e *InvalidDotenvFilePathError) Unwrap() error { return ErrInvalidDotenvFilePath }

// Validate returns nil if the DotenvFilePath is valid, or a validation
// error if it is not. The zero value is invalid.
func (p DotenvFilePath) Validate() error {
	if strings.TrimSpace(p.Path()) == "" {
		return &InvalidDotenvFilePathError{Value: p}
	}
	return nil
}

// IsOptional reports whether the path carries the '?' suffix marking the
// file as optional.
func (p DotenvFilePath) IsOptional() bool {
	return strings.HasSuffix(string(p), "?")
}

// Path returns the filesystem path with any optional marker stripped.
func (p DotenvFilePath) Path() string {
	return strings.TrimSuffix(string(p), "?")
}

// String returns the string representation of the DotenvFilePath.
func (p DotenvFilePath) String() string { return string(p) }
