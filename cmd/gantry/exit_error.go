// SPDX-License-Identifier: EPL-2.0

package cmd

import (
	"fmt"

	"gantry-cli/pkg/types"
)

// ExitError carries a process exit status out of a RunE handler without
// forcing os.Exit there. Execute unwraps it and exits with Code, which is
// how a container's exit status becomes gantry's own, unchanged.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", int(e.Code))
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}
