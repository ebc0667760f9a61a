// SPDX-License-Identifier: EPL-2.0

package container

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gantry-cli/pkg/types"
)

// Engine defines the interface for container operations.
type Engine interface {
	// Name returns the engine name (docker or podman).
	Name() string
	// Available checks if the engine is available on the system.
	Available() bool
	// Version returns the engine version.
	Version(ctx context.Context) (string, error)

	// Build builds an image from a Dockerfile.
	Build(ctx context.Context, opts BuildOptions) error
	// Run runs a container from an image. The container's exit status is
	// reported in RunResult.ExitCode, not as an error.
	Run(ctx context.Context, opts RunOptions) (*RunResult, error)
	// Exec runs a command inside an already-running container. Like Run,
	// the command's exit status is reported in RunResult.ExitCode.
	Exec(ctx context.Context, name ContainerName, command []string, opts RunOptions) (*RunResult, error)
	// ImageExists checks if an image exists in local storage.
	ImageExists(ctx context.Context, image ImageTag) (bool, error)
	// InspectImage returns the engine's raw JSON description of an image.
	InspectImage(ctx context.Context, image ImageTag) (string, error)
	// ListImages lists locally stored images matching the given filters.
	ListImages(ctx context.Context, opts ListImagesOptions) ([]ImageTag, error)
	// RemoveImage removes an image from local storage.
	RemoveImage(ctx context.Context, image ImageTag, force bool) error
	// Remove removes a container by name.
	Remove(ctx context.Context, name ContainerName, force bool) error
}

type (
	// BuildOptions contains options for building an image.
	BuildOptions struct {
		// ContextDir is the build context directory.
		ContextDir HostFilesystemPath
		// Dockerfile is the path to the Dockerfile, relative to ContextDir
		// unless absolute.
		Dockerfile HostFilesystemPath
		// Tag is the image tag to apply to the built image.
		Tag ImageTag
		// BuildArgs are build-time variables (--build-arg).
		BuildArgs map[string]string
		// Labels are image labels applied at build time (--label).
		Labels map[string]string
		// Pull forces a pull of the base image even if present locally.
		Pull bool
		// NoCache disables the engine's layer cache.
		NoCache bool
		// Stdout is where to stream build output.
		Stdout io.Writer
		// Stderr is where to stream build errors.
		Stderr io.Writer
	}

	// RunOptions contains options for running a container.
	RunOptions struct {
		// Image is the image to run.
		Image ImageTag
		// Command overrides the image's default command when non-empty.
		Command []string
		// Entrypoint overrides the image's entrypoint when non-empty.
		Entrypoint string
		// WorkDir is the working directory inside the container.
		// The zero value keeps the image's WORKDIR.
		WorkDir MountTargetPath
		// Env contains environment variables passed to the container.
		Env map[string]string
		// Volumes are volume mounts.
		Volumes []VolumeMount
		// Ports are port mappings.
		Ports []PortMapping
		// ExtraHosts are additional host-to-IP mappings
		// (e.g., "host.docker.internal:host-gateway").
		ExtraHosts []string
		// Name is the container name. The zero value lets the engine pick one.
		Name ContainerName
		// Remove automatically removes the container after exit (--rm).
		Remove bool
		// Init runs a minimal init as PID 1 so the application receives
		// signals directly and zombies are reaped (--init).
		Init bool
		// Interactive keeps stdin open (-i).
		Interactive bool
		// TTY allocates a pseudo-TTY (-t).
		TTY bool
		// Stdin is the standard input.
		Stdin io.Reader
		// Stdout is where to write standard output.
		Stdout io.Writer
		// Stderr is where to write standard error.
		Stderr io.Writer
	}

	// RunResult contains the result of running a container.
	RunResult struct {
		// ExitCode is the containerized process's exit status.
		ExitCode types.ExitCode
		// Error contains infrastructure failures only (binary missing,
		// command setup errors). A non-zero ExitCode is not an error.
		Error error
	}

	// ListImagesOptions contains filters for listing images.
	ListImagesOptions struct {
		// Repository limits results to a single repository (name without tag).
		Repository string
		// Labels limits results to images carrying all given labels
		// (--filter label=key=value).
		Labels map[string]string
	}
)

// Validate returns an error if any typed field of the BuildOptions is invalid.
func (o BuildOptions) Validate() error {
	var errs []error
	if err := o.ContextDir.Validate(); err != nil {
		errs = append(errs, err)
	}
	if o.Tag != "" {
		if err := o.Tag.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate returns an error if any typed field of the RunOptions is invalid.
func (o RunOptions) Validate() error {
	var errs []error
	if err := o.Image.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := o.Name.Validate(); err != nil {
		errs = append(errs, err)
	}
	for _, v := range o.Volumes {
		if err := v.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, p := range o.Ports {
		if err := p.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// EngineType identifies the container engine type.
type EngineType string

const (
	EngineTypeDocker EngineType = "docker"
	EngineTypePodman EngineType = "podman"
)

// Validate returns an error if the EngineType is not a recognized engine.
func (t EngineType) Validate() error {
	switch t {
	case EngineTypeDocker, EngineTypePodman:
		return nil
	default:
		return fmt.Errorf("unknown container engine type: %q (valid: docker, podman)", string(t))
	}
}

// String returns the string representation of the EngineType.
func (t EngineType) String() string { return string(t) }

// ErrEngineNotAvailable is returned when a container engine is not available.
type ErrEngineNotAvailable struct {
	Engine string
	Reason string
}

func (e *ErrEngineNotAvailable) Error() string {
	return fmt.Sprintf("container engine '%s' is not available: %s", e.Engine, e.Reason)
}

// NewEngine creates a new container engine based on preference.
// If the preferred engine is unavailable, the other engine is tried before
// giving up.
func NewEngine(preferredType EngineType) (Engine, error) {
	switch preferredType {
	case EngineTypeDocker:
		engine := NewDockerEngine()
		if engine.Available() {
			return engine, nil
		}
		// Fall back to Podman
		podmanEngine := NewPodmanEngine()
		if podmanEngine.Available() {
			return podmanEngine, nil
		}
		return nil, &ErrEngineNotAvailable{
			Engine: "docker",
			Reason: "docker is not installed or not accessible, and podman fallback is also not available",
		}

	case EngineTypePodman:
		engine := NewPodmanEngine()
		if engine.Available() {
			return engine, nil
		}
		// Fall back to Docker
		dockerEngine := NewDockerEngine()
		if dockerEngine.Available() {
			return dockerEngine, nil
		}
		return nil, &ErrEngineNotAvailable{
			Engine: "podman",
			Reason: "podman is not installed or not accessible, and docker fallback is also not available",
		}

	default:
		return nil, fmt.Errorf("unknown container engine type: %s", preferredType)
	}
}

// AutoDetectEngine tries to find an available container engine.
// Docker is tried first because it remains the default runtime on typical
// application deployment hosts; Podman is the rootless fallback.
func AutoDetectEngine() (Engine, error) {
	docker := NewDockerEngine()
	if docker.Available() {
		return docker, nil
	}

	podman := NewPodmanEngine()
	if podman.Available() {
		return podman, nil
	}

	return nil, &ErrEngineNotAvailable{
		Engine: "any",
		Reason: "no container engine (docker or podman) is available on this system",
	}
}

// InspectImageLabels returns the labels of a local image. Docker and Podman
// both report inspect output as a JSON array whose entries carry the image
// configuration under Config.Labels.
func InspectImageLabels(ctx context.Context, e Engine, image ImageTag) (map[string]string, error) {
	out, err := e.InspectImage(ctx, image)
	if err != nil {
		return nil, err
	}

	var entries []struct {
		Config struct {
			Labels map[string]string `json:"Labels"`
		} `json:"Config"`
	}
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		return nil, fmt.Errorf("unexpected %s inspect output for %s: %w", e.Name(), image, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no inspect entry for image %s", image)
	}
	return entries[0].Config.Labels, nil
}
