// SPDX-License-Identifier: EPL-2.0

package platform

// GOOS names used in switches over runtime.GOOS, so the string literals
// live in one place.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)
