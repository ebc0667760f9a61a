// SPDX-License-Identifier: EPL-2.0

package container

import (
	"context"
	"os/exec"

	"gantry-cli/pkg/platform"
)

// hostSpawnExecCommand returns the default ExecCommandFunc for CLI engines.
//
// Container engines run on the host, not inside an application sandbox. When
// gantry itself runs under Flatpak or Snap, paths it hands to the engine
// (staged build contexts, bind mounts) only resolve in the host namespace,
// so every engine invocation is routed through the sandbox's host spawn
// mechanism (flatpak-spawn --host, snap run --shell). Outside a sandbox this
// is plain exec.CommandContext.
func hostSpawnExecCommand(sb platform.Sandbox) ExecCommandFunc {
	spawn := sb.SpawnCommand()
	if spawn == "" {
		return exec.CommandContext
	}
	spawnArgs := sb.SpawnArgs()

	return func(ctx context.Context, name string, arg ...string) *exec.Cmd {
		full := make([]string, 0, len(spawnArgs)+1+len(arg))
		full = append(full, spawnArgs...)
		full = append(full, name)
		full = append(full, arg...)
		return exec.CommandContext(ctx, spawn, full...)
	}
}
