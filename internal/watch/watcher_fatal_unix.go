// SPDX-License-Identifier: EPL-2.0

//go:build !windows

package watch

import (
	"errors"
	"syscall"
)

// isFatalFsnotifyError classifies errors after which the watcher cannot
// keep its no-missed-rebuilds promise. On Linux these are the inotify
// resource exhaustion errnos:
//   - ENOSPC: inotify watch limit hit (fs.inotify.max_user_watches)
//   - EMFILE: per-process file descriptor limit hit
//   - ENFILE: system-wide file descriptor limit hit
func isFatalFsnotifyError(err error) bool {
	return errors.Is(err, syscall.ENOSPC) ||
		errors.Is(err, syscall.EMFILE) ||
		errors.Is(err, syscall.ENFILE)
}
