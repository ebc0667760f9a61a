// SPDX-License-Identifier: EPL-2.0

package gantryfile

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidAppName is the sentinel error wrapped by InvalidAppNameError.
var ErrInvalidAppName = errors.New("invalid app name")

// appNameRegex validates application names: lowercase alphanumerics and
// inner hyphens, DNS-label style. The name seeds the default image
// repository, so it has to be a valid repository path component.
var appNameRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

type (
	// AppName identifies the packaged application. Must be non-empty,
	// lowercase alphanumeric with inner hyphens, and at most 63 characters.
	AppName string

	// InvalidAppNameError is returned when an AppName value is invalid.
	// It wraps ErrInvalidAppName for errors.Is() compatibility.
	InvalidAppNameError struct {
		Value  AppName
		Reason string
	}
)

// Error implements the error interface.
func (e *InvalidAppNameError) Error() string {
	return fmt.Sprintf("invalid app name %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidAppName for errors.Is() compatibility.
func (e *InvalidAppNameError) Unwrap() error { return ErrInvalidAppName }

// Validate returns nil if the AppName is valid, or a validation error if it
// is not. The zero value is invalid.
func (n AppName) Validate() error {
	switch {
	case n == "":
		return &InvalidAppNameError{Value: n, Reason: "must be non-empty"}
	case len(n) > 63:
		return &InvalidAppNameError{Value: n, Reason: "must be at most 63 characters"}
	case !appNameRegex.MatchString(string(n)):
		return &InvalidAppNameError{Value: n, Reason: "must be lowercase alphanumerics and inner hyphens"}
	default:
		return nil
	}
}

// String returns the string representation of the AppName.
func (n AppName) String() string { return string(n) }
