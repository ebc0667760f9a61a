// SPDX-License-Identifier: EPL-2.0

package container

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strings"
)

// PodmanEngine implements the Engine interface using the Podman CLI.
// It embeds BaseCLIEngine for common CLI operations.
type PodmanEngine struct {
	*BaseCLIEngine
}

// NewPodmanEngine creates a new Podman engine.
// On Linux with SELinux enforcing, volume mounts are automatically labeled
// with :z. When host paths are mounted, --userns=keep-id is injected so files
// written by the container keep the invoking user's ownership under rootless
// Podman.
func NewPodmanEngine(opts ...BaseCLIEngineOption) *PodmanEngine {
	path, _ := exec.LookPath("podman")

	allOpts := append([]BaseCLIEngineOption{
		WithName(string(EngineTypePodman)),
		WithVolumeFormatter(func(mount VolumeMount) string {
			return formatVolumeWithSELinux(mount, isSELinuxEnabled())
		}),
		WithRunArgsTransformer(keepIDWhenMounting),
	}, opts...)

	return &PodmanEngine{
		BaseCLIEngine: NewBaseCLIEngine(HostFilesystemPath(path), allOpts...),
	}
}

// Available checks if Podman is available.
func (e *PodmanEngine) Available() bool {
	if e.BinaryPath() == "" {
		return false
	}
	cmd := e.CreateCommand(context.Background(), "version", "--format", "{{.Version}}")
	return cmd.Run() == nil
}

// Version returns the Podman version.
func (e *PodmanEngine) Version(ctx context.Context) (string, error) {
	out, err := e.RunCommandWithOutput(ctx, "version", "--format", "{{.Version}}")
	if err != nil {
		return "", fmt.Errorf("failed to get podman version: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// ImageExists checks if an image exists in local storage.
// Podman has a dedicated subcommand for this; it avoids the JSON inspection
// round trip Docker requires.
func (e *PodmanEngine) ImageExists(ctx context.Context, image ImageTag) (bool, error) {
	err := e.RunCommandStatus(ctx, "image", "exists", string(image))
	return err == nil, nil
}

// isSELinuxEnabled checks if SELinux is enforcing on the system.
func isSELinuxEnabled() bool {
	data, err := os.ReadFile("/sys/fs/selinux/enforce")
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(data)) == "1"
}

// formatVolumeWithSELinux formats a volume mount, appending the :z shared
// label when SELinux is enforcing and the mount doesn't already carry one.
// Without a label, container processes cannot access bind-mounted host paths
// in SELinux-enforcing environments.
func formatVolumeWithSELinux(mount VolumeMount, selinux bool) string {
	if selinux && mount.SELinux == SELinuxLabelNone {
		mount.SELinux = SELinuxLabelShared
	}
	return FormatVolumeMount(mount)
}

// keepIDWhenMounting injects --userns=keep-id into run arguments when any
// volume mount (-v) is present. Under rootless Podman the container root maps
// to an unprivileged subordinate UID; keep-id preserves the invoking user's
// UID so bind-mounted files stay accessible from the host.
func keepIDWhenMounting(args []string) []string {
	if !slices.Contains(args, "-v") {
		return args
	}
	out := make([]string, 0, len(args)+1)
	out = append(out, args[0], "--userns=keep-id")
	return append(out, args[1:]...)
}
