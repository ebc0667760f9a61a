// SPDX-License-Identifier: EPL-2.0

package container

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"gantry-cli/pkg/types"
)

func TestBaseCLIEngine_Build_InvokesEngine(t *testing.T) {
	t.Parallel()

	recorder := NewMockCommandRecorder()
	engine := NewBaseCLIEngine("/usr/bin/docker",
		WithName("docker"),
		WithExecCommand(recorder.ExecCommandFunc(t)))

	var out bytes.Buffer
	err := engine.Build(context.Background(), BuildOptions{
		ContextDir: HostFilesystemPath(t.TempDir()),
		Tag:        "tgbot:abc123",
		Stdout:     &out,
		Stderr:     &out,
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	recorder.AssertInvocationCount(t, 1)
	recorder.AssertFirstArg(t, "build")
	if !recorder.HasArgPair("-t", "tgbot:abc123") {
		t.Errorf("expected -t tgbot:abc123 in args, got: %v", recorder.LastArgs())
	}
}

func TestBaseCLIEngine_Build_ValidatesOptions(t *testing.T) {
	t.Parallel()

	recorder := NewMockCommandRecorder()
	engine := NewBaseCLIEngine("/usr/bin/docker",
		WithExecCommand(recorder.ExecCommandFunc(t)))

	err := engine.Build(context.Background(), BuildOptions{})
	if err == nil {
		t.Fatal("Build() with empty context dir should fail validation")
	}
	if !errors.Is(err, ErrInvalidHostFilesystemPath) {
		t.Errorf("expected ErrInvalidHostFilesystemPath, got: %v", err)
	}
	recorder.AssertInvocationCount(t, 0)
}

func TestBaseCLIEngine_Build_FailureIsActionable(t *testing.T) {
	t.Parallel()

	recorder := NewMockCommandRecorder()
	recorder.ExitCode = 1
	engine := NewBaseCLIEngine("/usr/bin/docker",
		WithName("docker"),
		WithExecCommand(recorder.ExecCommandFunc(t)))

	err := engine.Build(context.Background(), BuildOptions{
		ContextDir: HostFilesystemPath(t.TempDir()),
		Dockerfile: "Dockerfile",
	})
	if err == nil {
		t.Fatal("Build() should fail when the engine exits non-zero")
	}
	if !strings.Contains(err.Error(), "build container image") {
		t.Errorf("expected actionable build error, got: %v", err)
	}
}

func TestBaseCLIEngine_Run_ZeroExit(t *testing.T) {
	t.Parallel()

	recorder := NewMockCommandRecorder()
	engine := NewBaseCLIEngine("/usr/bin/docker",
		WithExecCommand(recorder.ExecCommandFunc(t)))

	result, err := engine.Run(context.Background(), RunOptions{
		Image: "tgbot:abc123",
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", result.ExitCode)
	}
	if result.Error != nil {
		t.Errorf("Error = %v, want nil", result.Error)
	}
	recorder.AssertFirstArg(t, "run")
}

func TestBaseCLIEngine_Run_PropagatesExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		code int
	}{
		{"application error", 3},
		{"engine error", 125},
		{"not found", 127},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			recorder := NewMockCommandRecorder()
			recorder.ExitCode = tt.code
			engine := NewBaseCLIEngine("/usr/bin/docker",
				WithExecCommand(recorder.ExecCommandFunc(t)))

			result, err := engine.Run(context.Background(), RunOptions{
				Image: "tgbot:abc123",
			})
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if result.ExitCode != types.ExitCode(tt.code) {
				t.Errorf("ExitCode = %d, want %d", result.ExitCode, tt.code)
			}
			// A non-zero exit status is not an infrastructure error.
			if result.Error != nil {
				t.Errorf("Error = %v, want nil", result.Error)
			}
		})
	}
}

func TestBaseCLIEngine_Run_ValidatesOptions(t *testing.T) {
	t.Parallel()

	recorder := NewMockCommandRecorder()
	engine := NewBaseCLIEngine("/usr/bin/docker",
		WithExecCommand(recorder.ExecCommandFunc(t)))

	_, err := engine.Run(context.Background(), RunOptions{})
	if err == nil {
		t.Fatal("Run() with empty image should fail validation")
	}
	if !errors.Is(err, ErrInvalidImageTag) {
		t.Errorf("expected ErrInvalidImageTag, got: %v", err)
	}
	recorder.AssertInvocationCount(t, 0)
}

func TestBaseCLIEngine_Exec_PropagatesExitCode(t *testing.T) {
	t.Parallel()

	recorder := NewMockCommandRecorder()
	recorder.ExitCode = 7
	engine := NewBaseCLIEngine("/usr/bin/docker",
		WithName("docker"),
		WithExecCommand(recorder.ExecCommandFunc(t)))

	result, err := engine.Exec(context.Background(), "gantry-tgbot",
		[]string{"poetry", "run", "pytest"}, RunOptions{})
	if err != nil {
		t.Fatalf("Exec() error = %v", err)
	}
	if result.ExitCode != types.ExitCode(7) {
		t.Errorf("ExitCode = %d, want 7", result.ExitCode)
	}
	// A non-zero exit status is not an infrastructure error.
	if result.Error != nil {
		t.Errorf("Error = %v, want nil", result.Error)
	}
	recorder.AssertFirstArg(t, "exec")
	if !recorder.HasArg("gantry-tgbot") {
		t.Errorf("expected container name in args, got: %v", recorder.LastArgs())
	}
}

func TestBaseCLIEngine_Exec_RequiresTarget(t *testing.T) {
	t.Parallel()

	recorder := NewMockCommandRecorder()
	engine := NewBaseCLIEngine("/usr/bin/docker",
		WithExecCommand(recorder.ExecCommandFunc(t)))

	_, err := engine.Exec(context.Background(), "", []string{"true"}, RunOptions{})
	if err == nil {
		t.Fatal("Exec() with empty container name should fail validation")
	}
	if !errors.Is(err, ErrInvalidContainerName) {
		t.Errorf("expected ErrInvalidContainerName, got: %v", err)
	}
	recorder.AssertInvocationCount(t, 0)
}

func TestBaseCLIEngine_InspectImage(t *testing.T) {
	t.Parallel()

	recorder := NewMockCommandRecorder()
	recorder.Stdout = `[{"Config":{"Labels":{"dev.gantry.app":"tgbot"}}}]`
	engine := NewBaseCLIEngine("/usr/bin/docker",
		WithExecCommand(recorder.ExecCommandFunc(t)))

	out, err := engine.InspectImage(context.Background(), "tgbot:a1b2c3d4e5f6")
	if err != nil {
		t.Fatalf("InspectImage() error = %v", err)
	}
	if !strings.Contains(out, "dev.gantry.app") {
		t.Errorf("InspectImage() output = %q, want raw inspect JSON", out)
	}
	recorder.AssertFirstArg(t, "image")
	if !recorder.HasArg("inspect") {
		t.Errorf("expected inspect subcommand, got: %v", recorder.LastArgs())
	}
}

func TestInspectImageLabels(t *testing.T) {
	t.Parallel()

	recorder := NewMockCommandRecorder()
	recorder.Stdout = `[{"Config":{"Labels":{"dev.gantry.app":"tgbot","dev.gantry.managed":"true"}}}]`
	engine := NewDockerEngine(WithExecCommand(recorder.ExecCommandFunc(t)))

	labels, err := InspectImageLabels(context.Background(), engine, "tgbot:a1b2c3d4e5f6")
	if err != nil {
		t.Fatalf("InspectImageLabels() error = %v", err)
	}
	if labels["dev.gantry.app"] != "tgbot" {
		t.Errorf("labels[dev.gantry.app] = %q, want %q", labels["dev.gantry.app"], "tgbot")
	}
	if labels["dev.gantry.managed"] != "true" {
		t.Errorf("labels[dev.gantry.managed] = %q, want %q", labels["dev.gantry.managed"], "true")
	}
}

func TestInspectImageLabels_BadOutput(t *testing.T) {
	t.Parallel()

	recorder := NewMockCommandRecorder()
	recorder.Stdout = "not json"
	engine := NewDockerEngine(WithExecCommand(recorder.ExecCommandFunc(t)))

	if _, err := InspectImageLabels(context.Background(), engine, "tgbot:a1b2c3d4e5f6"); err == nil {
		t.Fatal("InspectImageLabels() should fail on unparseable inspect output")
	}
}

func TestBaseCLIEngine_ListImages_ParsesOutput(t *testing.T) {
	t.Parallel()

	recorder := NewMockCommandRecorder()
	recorder.Stdout = "tgbot:a1b2c3d4e5f6\ntgbot:0f9e8d7c6b5a\n<none>:<none>\n\n"
	engine := NewBaseCLIEngine("/usr/bin/docker",
		WithExecCommand(recorder.ExecCommandFunc(t)))

	images, err := engine.ListImages(context.Background(), ListImagesOptions{Repository: "tgbot"})
	if err != nil {
		t.Fatalf("ListImages() error = %v", err)
	}

	want := []ImageTag{"tgbot:a1b2c3d4e5f6", "tgbot:0f9e8d7c6b5a"}
	if len(images) != len(want) {
		t.Fatalf("ListImages() = %v, want %v", images, want)
	}
	for i := range want {
		if images[i] != want[i] {
			t.Errorf("images[%d] = %q, want %q", i, images[i], want[i])
		}
	}
	recorder.AssertFirstArg(t, "images")
}

func TestBaseCLIEngine_RemoveImage_InvokesRmi(t *testing.T) {
	t.Parallel()

	recorder := NewMockCommandRecorder()
	engine := NewBaseCLIEngine("/usr/bin/docker",
		WithExecCommand(recorder.ExecCommandFunc(t)))

	if err := engine.RemoveImage(context.Background(), "tgbot:old", true); err != nil {
		t.Fatalf("RemoveImage() error = %v", err)
	}
	recorder.AssertFirstArg(t, "rmi")
	if !recorder.HasArg("-f") {
		t.Errorf("expected -f in args, got: %v", recorder.LastArgs())
	}
}

func TestBaseCLIEngine_Remove_InvokesRm(t *testing.T) {
	t.Parallel()

	recorder := NewMockCommandRecorder()
	engine := NewBaseCLIEngine("/usr/bin/docker",
		WithExecCommand(recorder.ExecCommandFunc(t)))

	if err := engine.Remove(context.Background(), "gantry-tgbot", true); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	recorder.AssertFirstArg(t, "rm")
	if !recorder.HasArg("gantry-tgbot") {
		t.Errorf("expected container name in args, got: %v", recorder.LastArgs())
	}
}

func TestBaseCLIEngine_RunCommandWithOutput(t *testing.T) {
	t.Parallel()

	recorder := NewMockCommandRecorder()
	recorder.Stdout = "28.0.1\n"
	engine := NewBaseCLIEngine("/usr/bin/docker",
		WithExecCommand(recorder.ExecCommandFunc(t)))

	out, err := engine.RunCommandWithOutput(context.Background(), "version", "--format", "{{.Server.Version}}")
	if err != nil {
		t.Fatalf("RunCommandWithOutput() error = %v", err)
	}
	if strings.TrimSpace(out) != "28.0.1" {
		t.Errorf("output = %q, want %q", out, "28.0.1")
	}
}
