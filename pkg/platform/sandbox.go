// SPDX-License-Identifier: EPL-2.0

package platform

import (
	"os"
	"sync"
)

// Sandbox identifies the application sandbox the current process runs in.
// Container engines live on the host, so a sandboxed gantry must route
// every engine invocation through the sandbox's host-spawn portal.
type Sandbox string

const (
	// NoSandbox means the process runs directly on the host.
	NoSandbox Sandbox = ""
	// Flatpak sandboxes reach the host through flatpak-spawn.
	Flatpak Sandbox = "flatpak"
	// Snap confinement reaches the host through the snap run shell.
	Snap Sandbox = "snap"
)

// detected caches the first detection for the process lifetime. The sandbox
// cannot change while the process runs, and detectFrom never panics, so
// sync.OnceValue is safe here (OnceValue re-raises a panic on every call).
var detected = sync.OnceValue(func() Sandbox {
	return detectFrom(os.Getenv, fileExists)
})

// Detect reports which sandbox, if any, the current process runs inside.
// The first call probes the environment; later calls return the cached result.
func Detect() Sandbox {
	return detected()
}

// SpawnCommand returns the binary that spawns a process on the host, or ""
// when the process already runs on the host.
func (s Sandbox) SpawnCommand() string {
	switch s {
	case Flatpak:
		return "flatpak-spawn"
	case Snap:
		return "snap"
	default:
		return ""
	}
}

// SpawnArgs returns the arguments that precede the host command line when
// spawning through SpawnCommand. Nil outside a sandbox.
func (s Sandbox) SpawnArgs() []string {
	switch s {
	case Flatpak:
		return []string{"--host"}
	case Snap:
		return []string{"run", "--shell"}
	default:
		return nil
	}
}

// detectFrom performs the detection with injectable lookups so tests can
// simulate sandbox environments without mutating process state.
//
// Flatpak mounts /.flatpak-info into every sandbox; it is checked first
// because a Flatpak session may also carry SNAP_* variables inherited from
// the host environment.
func detectFrom(getenv func(string) string, exists func(string) bool) Sandbox {
	if exists("/.flatpak-info") {
		return Flatpak
	}
	if getenv("SNAP_NAME") != "" {
		return Snap
	}
	return NoSandbox
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
