// SPDX-License-Identifier: EPL-2.0

package gantryfile

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrInvalidEnvVarName is the sentinel error wrapped by InvalidEnvVarNameError.
	ErrInvalidEnvVarName = errors.New("invalid environment variable name")

	// envVarNameRegex validates environment variable names
	envVarNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

type (
	// EnvVarName represents an environment variable name.
	// A valid env var name starts with a letter or underscore, followed by
	// letters, digits, or underscores (matching POSIX conventions).
	EnvVarName string

	// InvalidEnvVarNameError is returned when an EnvVarName value is empty,
	// whitespace-only, or doesn't match the POSIX env var naming convention.
	InvalidEnvVarNameError struct {
		Value EnvVarName
	}

	// EnvSpec declares the environment baked into the image and loaded at
	// container start.
	EnvSpec struct {
		// Files lists dotenv files to load at launch (optional).
		// Files are loaded in order; later files override earlier ones.
		// Paths are relative to the gantryfile location. Files suffixed
		// with '?' are optional and do not cause an error when missing.
		Files []DotenvFilePath `json:"files,omitempty"`
		// Vars contains environment variables as key-value pairs (optional).
		// These are rendered into the image and override values loaded from
		// Files.
		Vars map[EnvVarName]string `json:"vars,omitempty"`
	}
)

// Error implements the error interface.
func (e *InvalidEnvVarNameError) Error() string {
	return fmt.Sprintf("invalid environment variable name %q (must match [A-Za-z_][A-Za-z0-9_]*)", e.Value)
}

// Unwrap returns ErrInvalidEnvVarName for errors.Is() compatibility.
func (e *InvalidEnvVarNameError) Unwrap() error { return ErrInvalidEnvVarName }

// Validate returns nil if the EnvVarName is a valid POSIX environment
// variable name, or a validation error if it is not. The zero value is
// invalid.
func (n EnvVarName) Validate() error {
	s := string(n)
	if strings.TrimSpace(s) == "" || !envVarNameRegex.MatchString(s) {
		return &InvalidEnvVarNameError{Value: n}
	}
	return nil
}

// String returns the string representation of the EnvVarName.
func (n EnvVarName) String() string { return string(n) }

// GetFiles returns the files list, or an empty slice if EnvSpec is nil.
func (e *EnvSpec) GetFiles() []DotenvFilePath {
	if e == nil {
		return nil
	}
	return e.Files
}

// GetVars returns the vars map, or an empty map if EnvSpec is nil.
func (e *EnvSpec) GetVars() map[EnvVarName]string {
	if e == nil {
		return nil
	}
	return e.Vars
}
