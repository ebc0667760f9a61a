// SPDX-License-Identifier: EPL-2.0

// Package platform answers questions about where the process is running.
//
// It names the GOOS values gantry branches on and detects application
// sandboxes (Flatpak, Snap), whose host-spawn portals the container package
// uses to reach engines installed on the host.
package platform
