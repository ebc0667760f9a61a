// SPDX-License-Identifier: EPL-2.0

package gantryfile

import (
	"errors"
	"fmt"

	"gantry-cli/pkg/pyproject"
)

// ErrInvalidToolVersion is the sentinel error wrapped by InvalidToolVersionError.
var ErrInvalidToolVersion = errors.New("invalid tool version")

type (
	// ToolVersion is an exact version pin for the dependency manager
	// installed into the image ("1.7.1"). Constraints and "latest" are
	// rejected: the whole point of the pin is that the same descriptor
	// provisions the same tool years later.
	ToolVersion string

	// InvalidToolVersionError is returned when a ToolVersion value is not
	// an exact version. It wraps ErrInvalidToolVersion for errors.Is()
	// compatibility.
	InvalidToolVersionError struct {
		Value ToolVersion
	}
)

// Error implements the error interface.
func (e *InvalidToolVersionError) Error() string {
	return fmt.Sprintf("invalid tool version %q: must be an exact version like \"1.7.1\", not a range or \"latest\"", e.Value)
}

// Unwrap returns ErrInvalidToolVersion for errors.Is() compatibility.
func (e *InvalidToolVersionError) Unwrap() error { return ErrInvalidToolVersion }

// Validate returns nil if the ToolVersion is an exact PEP 440 version, or a
// validation error if it is not. The zero value is invalid.
func (v ToolVersion) Validate() error {
	if _, err := pyproject.ParseVersion(string(v)); err != nil {
		return &InvalidToolVersionError{Value: v}
	}
	return nil
}

// String returns the string representation of the ToolVersion.
func (v ToolVersion) String() string { return string(v) }
