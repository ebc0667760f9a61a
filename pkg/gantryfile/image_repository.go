// SPDX-License-Identifier: EPL-2.0

package gantryfile

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidImageRepository is the sentinel error wrapped by InvalidImageRepositoryError.
var ErrInvalidImageRepository = errors.New("invalid image repository")

// imageRepositoryRegex validates repository names without registry or tag:
// lowercase path components separated by "/", each component alphanumerics
// with inner ".", "_", "__" or "-" runs.
var imageRepositoryRegex = regexp.MustCompile(
	`^[a-z0-9]+((\.|_|__|-+)[a-z0-9]+)*(/[a-z0-9]+((\.|_|__|-+)[a-z0-9]+)*)*$`)

type (
	// ImageRepository names the repository built images are tagged into
	// ("support-bot", "registry-team/support-bot"). Registry host and tag
	// are not part of the repository; gantry derives the tag from the build
	// inputs.
	ImageRepository string

	// InvalidImageRepositoryError is returned when an ImageRepository value
	// is invalid. It wraps ErrInvalidImageRepository for errors.Is()
	// compatibility.
	InvalidImageRepositoryError struct {
		Value ImageRepository
	}
)

// Error implements the error interface.
func (e *InvalidImageRepositoryError) Error() string {
	return fmt.Sprintf("invalid image repository %q: must be lowercase path components without registry or tag", e.Value)
}

// Unwrap returns ErrInvalidImageRepository for errors.Is() compatibility.
func (e *InvalidImageRepositoryError) Unwrap() error { return ErrInvalidImageRepository }

// Validate returns nil if the ImageRepository is valid, or a validation
// error if it is not. The zero value is invalid.
func (r ImageRepository) Validate() error {
	if !imageRepositoryRegex.MatchString(string(r)) {
		return &InvalidImageRepositoryError{Value: r}
	}
	return nil
}

// String returns the string representation of the ImageRepository.
func (r ImageRepository) String() string { return string(r) }
