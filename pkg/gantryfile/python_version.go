// SPDX-License-Identifier: EPL-2.0

package gantryfile

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrInvalidPythonVersion is the sentinel error wrapped by InvalidPythonVersionError.
	ErrInvalidPythonVersion = errors.New("invalid python version")
	// ErrInvalidImageVariant is the sentinel error wrapped by InvalidImageVariantError.
	ErrInvalidImageVariant = errors.New("invalid image variant")
)

// pythonVersionRegex validates interpreter versions for official python
// image tags: "3.11" or "3.11.7".
var pythonVersionRegex = regexp.MustCompile(`^[0-9]+\.[0-9]+(\.[0-9]+)?$`)

const (
	// VariantSlim is the Debian slim flavor of the official python image.
	VariantSlim ImageVariant = "slim"
	// VariantBookworm is the full Debian bookworm flavor.
	VariantBookworm ImageVariant = "bookworm"
	// VariantAlpine is the Alpine flavor.
	VariantAlpine ImageVariant = "alpine"
	// VariantFull is the default python image with no suffix.
	VariantFull ImageVariant = "full"
)

type (
	// PythonVersion is the interpreter version selecting the base image tag
	// ("3.11", "3.12.1").
	PythonVersion string

	// InvalidPythonVersionError is returned when a PythonVersion value is
	// invalid. It wraps ErrInvalidPythonVersion for errors.Is() compatibility.
	InvalidPythonVersionError struct {
		Value PythonVersion
	}

	// ImageVariant selects the flavor of the official python base image.
	ImageVariant string

	// InvalidImageVariantError is returned when an ImageVariant value is not
	// one of the known flavors. It wraps ErrInvalidImageVariant for
	// errors.Is() compatibility.
	InvalidImageVariantError struct {
		Value ImageVariant
	}
)

// Error implements the error interface.
func (e *InvalidPythonVersionError) Error() string {
	return fmt.Sprintf("invalid python version %q: must look like \"3.11\" or \"3.11.7\"", e.Value)
}

// Unwrap returns ErrInvalidPythonVersion for errors.Is() compatibility.
func (e *InvalidPythonVersionError) Unwrap() error { return ErrInvalidPythonVersion }

// Validate returns nil if the PythonVersion is valid, or a validation error
// if it is not. The zero value is invalid.
func (v PythonVersion) Validate() error {
	if !pythonVersionRegex.MatchString(string(v)) {
		return &InvalidPythonVersionError{Value: v}
	}
	return nil
}

// String returns the string representation of the PythonVersion.
func (v PythonVersion) String() string { return string(v) }

// Error implements the error interface.
func (e *InvalidImageVariantError) Error() string {
	return fmt.Sprintf("invalid image variant %q (valid: slim, bookworm, alpine, full)", e.Value)
}

// Unwrap returns ErrInvalidImageVariant for errors.Is() compatibility.
func (e *InvalidImageVariantError) Unwrap() error { return ErrInvalidImageVariant }

// Validate returns nil if the ImageVariant is one of the known flavors, or a
// validation error if it is not. The zero value is invalid.
func (v ImageVariant) Validate() error {
	switch v {
	case VariantSlim, VariantBookworm, VariantAlpine, VariantFull:
		return nil
	default:
		return &InvalidImageVariantError{Value: v}
	}
}

// String returns the string representation of the ImageVariant.
func (v ImageVariant) String() string { return string(v) }
