// SPDX-License-Identifier: EPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// EngineAuto picks the first available engine, preferring Docker.
	EngineAuto EnginePreference = "auto"
	// EngineDocker forces the Docker CLI.
	EngineDocker EnginePreference = "docker"
	// EnginePodman forces the Podman CLI.
	EnginePodman EnginePreference = "podman"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// maxBuildRetries bounds the transient-failure retry count.
	maxBuildRetries = 10
)

var (
	// ErrInvalidEnginePreference is returned when an EnginePreference value is not recognized.
	ErrInvalidEnginePreference = errors.New("invalid engine preference")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidContextDirPath is returned when a ContextDirPath value is whitespace-only.
	ErrInvalidContextDirPath = errors.New("invalid context dir path")
	// ErrInvalidBuildConfig is the sentinel error wrapped by InvalidBuildConfigError.
	ErrInvalidBuildConfig = errors.New("invalid build config")
	// ErrInvalidUIConfig is the sentinel error wrapped by InvalidUIConfigError.
	ErrInvalidUIConfig = errors.New("invalid UI config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// EnginePreference specifies which container engine gantry should use.
	EnginePreference string

	// InvalidEnginePreferenceError is returned when an EnginePreference value
	// is not recognized. It wraps ErrInvalidEnginePreference for errors.Is()
	// compatibility.
	InvalidEnginePreferenceError struct {
		Value EnginePreference
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// ContextDirPath is the parent directory for temporary build contexts.
	// The zero value ("") is valid and means "use the OS temp directory".
	// Non-zero values must not be whitespace-only.
	ContextDirPath string

	// InvalidContextDirPathError is returned when a ContextDirPath value is
	// non-empty but whitespace-only.
	InvalidContextDirPathError struct {
		Value ContextDirPath
	}

	// InvalidBuildConfigError is returned when a BuildConfig has invalid fields.
	// It wraps ErrInvalidBuildConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidBuildConfigError struct {
		FieldErrors []error
	}

	// InvalidUIConfigError is returned when a UIConfig has invalid fields.
	// It wraps ErrInvalidUIConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidUIConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the tool-level configuration. Everything build-specific
	// lives in the project's gantryfile; this is user/machine preference.
	Config struct {
		// Engine specifies the container engine: "auto", "docker" or "podman".
		Engine EnginePreference `json:"engine" mapstructure:"engine"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
		// Build configures build behavior.
		Build BuildConfig `json:"build" mapstructure:"build"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme.
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables verbose output.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}

	// BuildConfig configures build behavior.
	BuildConfig struct {
		// Force rebuilds even when the content-addressed image already exists.
		Force bool `json:"force" mapstructure:"force"`
		// ContextDir overrides where temporary build contexts are staged.
		ContextDir ContextDirPath `json:"context_dir" mapstructure:"context_dir"`
		// Retries is how many times transient engine failures are retried.
		Retries int `json:"retries" mapstructure:"retries"`
	}
)

// Error implements the error interface for InvalidEnginePreferenceError.
func (e *InvalidEnginePreferenceError) Error() string {
	return fmt.Sprintf("invalid engine preference %q (valid: auto, docker, podman)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidEnginePreferenceError) Unwrap() error { return ErrInvalidEnginePreference }

// String returns the string representation of the EnginePreference.
func (p EnginePreference) String() string { return string(p) }

// Validate returns nil if the EnginePreference is one of the defined values,
// or a validation error if it is not.
func (p EnginePreference) Validate() error {
	switch p {
	case EngineAuto, EngineDocker, EnginePodman:
		return nil
	default:
		return &InvalidEnginePreferenceError{Value: p}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// Validate returns nil if the ColorScheme is one of the defined values, or a
// validation error if it is not.
func (cs ColorScheme) Validate() error {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return &InvalidColorSchemeError{Value: cs}
	}
}

// Error implements the error interface for InvalidContextDirPathError.
func (e *InvalidContextDirPathError) Error() string {
	return fmt.Sprintf("invalid context dir path %q: non-empty value must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidContextDirPath for errors.Is() compatibility.
func (e *InvalidContextDirPathError) Unwrap() error { return ErrInvalidContextDirPath }

// String returns the string representation of the ContextDirPath.
func (p ContextDirPath) String() string { return string(p) }

// Validate returns nil if the ContextDirPath is valid. The zero value is
// valid and means "use the OS temp directory".
func (p ContextDirPath) Validate() error {
	if p == "" {
		return nil
	}
	if strings.TrimSpace(string(p)) == "" {
		return &InvalidContextDirPathError{Value: p}
	}
	return nil
}

// Error implements the error interface for InvalidUIConfigError.
func (e *InvalidUIConfigError) Error() string {
	return fmt.Sprintf("invalid UI config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidUIConfig plus the field errors, so errors.Is
// matches the aggregate sentinel and the leaf sentinels alike.
func (e *InvalidUIConfigError) Unwrap() []error {
	return append([]error{ErrInvalidUIConfig}, e.FieldErrors...)
}

// Validate returns nil if the UIConfig has valid fields; bool fields need no
// validation.
func (c UIConfig) Validate() error {
	var errs []error
	if err := c.ColorScheme.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return &InvalidUIConfigError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface for InvalidBuildConfigError.
func (e *InvalidBuildConfigError) Error() string {
	return fmt.Sprintf("invalid build config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidBuildConfig plus the field errors, so errors.Is
// matches the aggregate sentinel and the leaf sentinels alike.
func (e *InvalidBuildConfigError) Unwrap() []error {
	return append([]error{ErrInvalidBuildConfig}, e.FieldErrors...)
}

// Validate returns nil if the BuildConfig has valid fields.
func (c BuildConfig) Validate() error {
	var errs []error
	if err := c.ContextDir.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Retries < 0 || c.Retries > maxBuildRetries {
		errs = append(errs, fmt.Errorf("retries must be between 0 and %d, got %d", maxBuildRetries, c.Retries))
	}
	if len(errs) > 0 {
		return &InvalidBuildConfigError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig plus the per-section errors, so errors.Is
// reaches the leaf sentinels through the aggregate.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// Validate returns nil if the Config has valid fields. It delegates to
// Engine.Validate(), UI.Validate() and Build.Validate(). Values arriving
// through GANTRY_* env overrides bypass the CUE schema, so this runs on
// every load.
func (c Config) Validate() error {
	var errs []error
	if err := c.Engine.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.UI.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Build.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineAuto,
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
		Build: BuildConfig{
			Force:      false,
			ContextDir: "",
			Retries:    2,
		},
	}
}
