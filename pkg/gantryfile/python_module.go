// SPDX-License-Identifier: EPL-2.0

package gantryfile

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidPythonModule is the sentinel error wrapped by InvalidPythonModuleError.
var ErrInvalidPythonModule = errors.New("invalid python module")

// pythonModuleRegex validates dotted module paths: Python identifiers
// separated by single dots ("app", "app.bot").
var pythonModuleRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

type (
	// PythonModule is the dotted module path the entrypoint runs with
	// "python -m" ("app.bot"). Must be one or more Python identifiers
	// joined by dots.
	PythonModule string

	// InvalidPythonModuleError is returned when a PythonModule value is
	// invalid. It wraps ErrInvalidPythonModule for errors.Is() compatibility.
	InvalidPythonModuleError struct {
		Value PythonModule
	}
)

// Error implements the error interface.
func (e *InvalidPythonModuleError) Error() string {
	return fmt.Sprintf("invalid python module %q: must be dotted identifiers like \"app.bot\"", e.Value)
}

// Unwrap returns ErrInvalidPythonModule for errors.Is() compatibility.
func (e *InvalidPythonModuleError) Unwrap() error { return ErrInvalidPythonModule }

// Validate returns nil if the PythonModule is a valid dotted module path,
// or a validation error if it is not. The zero value is invalid.
func (m PythonModule) Validate() error {
	if !pythonModuleRegex.MatchString(string(m)) {
		return &InvalidPythonModuleError{Value: m}
	}
	return nil
}

// String returns the string representation of the PythonModule.
func (m PythonModule) String() string { return string(m) }
