// SPDX-License-Identifier: EPL-2.0

//go:build windows

package watch

import (
	"errors"
	"syscall"
)

// Win32 system error codes that matter for watcher health.
const (
	// ERROR_TOO_MANY_OPEN_FILES (4): per-process handle limit hit;
	// analogous to EMFILE on Unix.
	errnoTooManyOpenFiles = syscall.Errno(4)
	// ERROR_INVALID_HANDLE (6): the directory handle went stale,
	// typically because the watched directory was deleted or unmounted.
	errnoInvalidHandle = syscall.Errno(6)
	// ERROR_NOT_ENOUGH_MEMORY (8): no memory for the
	// ReadDirectoryChangesW notification buffer.
	errnoNotEnoughMemory = syscall.Errno(8)
)

// isFatalFsnotifyError classifies errors after which the watcher cannot
// keep its no-missed-rebuilds promise. ReadDirectoryChangesW has no
// inotify-style watch limits, but handle exhaustion, stale handles and
// buffer allocation failures still leave the watcher blind.
func isFatalFsnotifyError(err error) bool {
	return errors.Is(err, errnoTooManyOpenFiles) ||
		errors.Is(err, errnoInvalidHandle) ||
		errors.Is(err, errnoNotEnoughMemory)
}
