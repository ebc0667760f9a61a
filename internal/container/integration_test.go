// SPDX-License-Identifier: EPL-2.0

package container

import (
	"context"
	"strings"
	"testing"
	"time"

	"gantry-cli/internal/testutil"

	"github.com/testcontainers/testcontainers-go"
)

// engineProviderAvailable reports whether a docker-compatible provider is
// reachable. The probe goes through testcontainers because it inspects the
// actual socket instead of just the CLI binary, which catches the
// installed-but-daemonless case before a test hangs on it. Provider
// detection can panic on misconfigured hosts, hence the recover guard.
func engineProviderAvailable() (available bool) {
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	provider, err := testcontainers.ProviderDocker.GetProvider()
	if err != nil {
		return false
	}
	defer provider.Close() //nolint:errcheck // Probe only
	return true
}

// TestEngineIntegration exercises a real docker or podman CLI when one is
// installed. Everything here is read-only, so it is safe on developer
// machines; -short skips it, and a machine with no engine skips too.
func TestEngineIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping engine integration test in short mode")
	}

	eng, err := AutoDetectEngine()
	if err != nil {
		t.Skipf("no container engine available: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	version, err := eng.Version(ctx)
	if err != nil {
		t.Fatalf("Version() error: %v", err)
	}
	if version == "" {
		t.Error("Version() returned an empty string")
	}
	t.Logf("engine %s, version %s", eng.Name(), version)

	exists, err := eng.ImageExists(ctx, ImageTag("gantry-integration-test:does-not-exist"))
	if err != nil {
		t.Fatalf("ImageExists() error: %v", err)
	}
	if exists {
		t.Error("a made-up tag should not exist")
	}

	// Listing by the management label must succeed even with no matches.
	tags, err := eng.ListImages(ctx, ListImagesOptions{
		Labels: map[string]string{"dev.gantry.managed": "true"},
	})
	if err != nil {
		t.Fatalf("ListImages() error: %v", err)
	}
	t.Logf("%d gantry-managed image(s) present", len(tags))
}

// TestEngineRunIntegration starts a real container and checks that stdout
// and the exit status come back exactly. This is the status-propagation
// contract the launcher builds on.
func TestEngineRunIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping engine run integration test in short mode")
	}
	if !engineProviderAvailable() {
		t.Skip("skipping: no docker-compatible provider reachable")
	}

	eng, err := AutoDetectEngine()
	if err != nil {
		t.Skipf("no container engine available: %v", err)
	}

	sem := testutil.ContainerSemaphore()
	sem <- struct{}{}
	defer func() { <-sem }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var stdout strings.Builder
	res, err := eng.Run(ctx, RunOptions{
		Image:   ImageTag("alpine:3.20"),
		Command: []string{"sh", "-c", "echo gantry-ok; exit 7"},
		Remove:  true,
		Stdout:  &stdout,
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.Error != nil {
		t.Fatalf("Run() infrastructure error: %v", res.Error)
	}

	if got := res.ExitCode; got != 7 {
		t.Errorf("ExitCode = %d, want 7 (status must propagate exactly)", got)
	}
	if !strings.Contains(stdout.String(), "gantry-ok") {
		t.Errorf("stdout = %q, want it to contain %q", stdout.String(), "gantry-ok")
	}
}
