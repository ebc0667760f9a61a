// SPDX-License-Identifier: EPL-2.0

package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrInvalidWatchConfig is wrapped by every validation failure so callers
// can match the class with errors.Is.
var ErrInvalidWatchConfig = errors.New("invalid watch config")

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Patterns are doublestar globs (e.g. "app/**/*.py") selecting
		// which files trigger callbacks. An empty slice watches every
		// non-ignored file.
		Patterns []string

		// Ignore are doublestar globs for paths that never trigger
		// callbacks, merged with the built-in default ignores.
		Ignore []string

		// Debounce is the quiet period after the last event before the
		// callback fires. Zero or negative falls back to defaultDebounce.
		Debounce time.Duration

		// ClearScreen writes an ANSI clear to Stdout before each callback.
		// No terminal detection is performed; enable it only when Stdout
		// is a real terminal.
		ClearScreen bool

		// BaseDir is the root directory to watch; patterns are matched
		// against paths relative to it. Empty means the current working
		// directory.
		BaseDir string

		// OnChange runs after the debounce window closes, with the
		// deduplicated changed paths relative to BaseDir. nil is a no-op.
		OnChange func(ctx context.Context, changed []string) error

		// Stdout and Stderr receive informational and error messages.
		// nil values default to os.Stdout / os.Stderr.
		Stdout io.Writer
		Stderr io.Writer
	}

	// InvalidWatchConfigError aggregates every invalid field found during
	// validation, not just the first.
	InvalidWatchConfigError struct {
		FieldErrors []error
	}
)

// Error implements the error interface.
func (e *InvalidWatchConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, fe := range e.FieldErrors {
		msgs[i] = fe.Error()
	}
	return fmt.Sprintf("invalid watch config (%d field error(s)): %s",
		len(e.FieldErrors), strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidWatchConfig plus the field errors, so errors.Is
// matches the class and any wrapped pattern error (doublestar.ErrBadPattern).
func (e *InvalidWatchConfigError) Unwrap() []error {
	return append([]error{ErrInvalidWatchConfig}, e.FieldErrors...)
}

// Validate checks every field and reports all problems at once. The zero
// value is valid: no patterns means watch everything, an empty BaseDir
// means the current working directory.
func (c Config) Validate() error {
	var fieldErrs []error

	for _, pat := range c.Patterns {
		if err := validatePattern(pat); err != nil {
			fieldErrs = append(fieldErrs, fmt.Errorf("invalid watch pattern %q: %w", pat, err))
		}
	}
	for _, pat := range c.Ignore {
		if err := validatePattern(pat); err != nil {
			fieldErrs = append(fieldErrs, fmt.Errorf("invalid ignore pattern %q: %w", pat, err))
		}
	}
	if c.BaseDir != "" && strings.TrimSpace(c.BaseDir) == "" {
		fieldErrs = append(fieldErrs, errors.New("base directory is whitespace-only"))
	}

	if len(fieldErrs) > 0 {
		return &InvalidWatchConfigError{FieldErrors: fieldErrs}
	}
	return nil
}

// validatePattern rejects empty and malformed globs. The match against an
// empty path is a syntax probe: doublestar only reports bad patterns
// through the match error.
func validatePattern(pat string) error {
	if pat == "" {
		return errors.New("pattern is empty")
	}
	if _, err := doublestar.Match(pat, ""); err != nil {
		return err
	}
	return nil
}
