// SPDX-License-Identifier: EPL-2.0

package launch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gantry-cli/internal/build"
	"gantry-cli/internal/container"
	"gantry-cli/internal/issue"
	"gantry-cli/pkg/gantryfile"
	"gantry-cli/pkg/types"
)

// DefaultShell is the interactive shell started by Shell when no override
// is given. The slim (Debian) base images carry bash; alpine variants need
// an explicit /bin/sh.
const DefaultShell = "/bin/bash"

type (
	// Options tune a single launch.
	Options struct {
		// Build is forwarded to the image builder.
		Build build.Options
		// NoBuild requires an existing image and never triggers a build.
		NoBuild bool
		// Args are extra arguments appended to the fixed entrypoint.
		Args []string
		// EnvFiles are --env-file paths, resolved against the invocation
		// directory.
		EnvFiles []string
		// EnvVars are --env-var assignments, the highest-precedence source.
		EnvVars map[string]string
		// Ports are extra publish specs on top of the descriptor's.
		Ports []string
		// Volumes are extra mount specs on top of the descriptor's.
		Volumes []string
		// Name overrides the managed container name.
		Name string
		// Stdin, when non-nil, is attached to the container.
		Stdin io.Reader
		// Stdout receives the application's standard output.
		Stdout io.Writer
		// Stderr receives the application's standard error.
		Stderr io.Writer
	}

	// Launcher runs the project's image as a foreground container.
	Launcher struct {
		engine  container.Engine
		gf      *gantryfile.Gantryfile
		root    string
		opts    Options
		builder *build.Builder
	}

	// Result is the outcome of a launch. A non-zero ExitCode with a nil
	// Error is a normal application exit, propagated exactly.
	Result struct {
		// Tag is the image that ran.
		Tag container.ImageTag
		// ExitCode is the process exit status gantry should exit with.
		ExitCode types.ExitCode
		// Error is set for infrastructure failures only.
		Error error
	}
)

// NewLauncher creates a Launcher for the project rooted at root.
func NewLauncher(engine container.Engine, gf *gantryfile.Gantryfile, root string, opts Options) *Launcher {
	return &Launcher{
		engine:  engine,
		gf:      gf,
		root:    root,
		opts:    opts,
		builder: build.NewBuilder(engine, gf, root, opts.Build),
	}
}

// Run ensures the image exists, then runs it in the foreground with stdio
// attached and returns the application's exit status unchanged.
func (l *Launcher) Run(ctx context.Context) *Result {
	tag, err := l.ensureImage(ctx)
	if err != nil {
		return &Result{ExitCode: 1, Error: err}
	}

	runOpts, err := l.runOptions(tag)
	if err != nil {
		return &Result{Tag: tag, ExitCode: 1, Error: err}
	}

	// A crashed engine can leave a container holding the managed name even
	// with --rm; clear it so the new run does not collide.
	if runOpts.Name != "" {
		_ = l.engine.Remove(ctx, runOpts.Name, true) //nolint:errcheck // No container to remove is the normal case
	}

	res, err := l.engine.Run(ctx, runOpts)
	if err != nil {
		return &Result{Tag: tag, ExitCode: types.ExitEngineError, Error: err}
	}

	return &Result{Tag: tag, ExitCode: res.ExitCode, Error: res.Error}
}

// Shell starts an interactive shell in the project's image instead of the
// entrypoint. The container gets no managed name and no published ports,
// so a shell can run alongside the application.
func (l *Launcher) Shell(ctx context.Context, shell string) *Result {
	if shell == "" {
		shell = DefaultShell
	}
	return l.runOverride(ctx, []string{shell}, true)
}

// Exec runs a one-off command in the project's image in place of the
// entrypoint. Unlike Shell no TTY is allocated, so output pipes cleanly;
// stdin is attached only when the caller provided one.
func (l *Launcher) Exec(ctx context.Context, argv []string) *Result {
	if len(argv) == 0 {
		return &Result{ExitCode: 1, Error: fmt.Errorf("empty command")}
	}
	return l.runOverride(ctx, argv, false)
}

// Attach runs a command inside the already-running application container
// (the managed name) instead of starting a sibling. No image is built and
// no descriptor environment is applied: the process joins the container
// exactly as the running instance was configured. The result carries no
// tag, since attach never decides which image runs.
func (l *Launcher) Attach(ctx context.Context, argv []string, tty bool) *Result {
	if len(argv) == 0 {
		return &Result{ExitCode: 1, Error: fmt.Errorf("empty command")}
	}

	res, err := l.engine.Exec(ctx, l.containerName(), argv, container.RunOptions{
		Env:         l.opts.EnvVars,
		Interactive: tty || l.opts.Stdin != nil,
		TTY:         tty,
		Stdin:       l.opts.Stdin,
		Stdout:      l.opts.Stdout,
		Stderr:      l.opts.Stderr,
	})
	if err != nil {
		return &Result{ExitCode: types.ExitEngineError, Error: err}
	}

	return &Result{ExitCode: res.ExitCode, Error: res.Error}
}

// runOverride runs an arbitrary command in the image with the descriptor's
// environment and volumes, but no managed name and no published ports.
func (l *Launcher) runOverride(ctx context.Context, command []string, tty bool) *Result {
	tag, err := l.ensureImage(ctx)
	if err != nil {
		return &Result{ExitCode: 1, Error: err}
	}

	env, err := BuildEnv(l.gf, l.root, l.opts.EnvFiles, l.opts.EnvVars)
	if err != nil {
		return &Result{Tag: tag, ExitCode: 1, Error: err}
	}

	volumes, err := l.volumeMounts()
	if err != nil {
		return &Result{Tag: tag, ExitCode: 1, Error: err}
	}

	res, err := l.engine.Run(ctx, container.RunOptions{
		Image:       tag,
		Command:     command,
		Env:         env,
		Volumes:     volumes,
		Remove:      true,
		Interactive: tty || l.opts.Stdin != nil,
		TTY:         tty,
		Stdin:       l.opts.Stdin,
		Stdout:      l.opts.Stdout,
		Stderr:      l.opts.Stderr,
	})
	if err != nil {
		return &Result{Tag: tag, ExitCode: types.ExitEngineError, Error: err}
	}

	return &Result{Tag: tag, ExitCode: res.ExitCode, Error: res.Error}
}

// ensureImage returns the tag to run. Without NoBuild it delegates to the
// builder, which verifies the lock, short-circuits on a cache hit, or
// builds. With NoBuild the derived (or overridden) tag must already exist.
func (l *Launcher) ensureImage(ctx context.Context) (container.ImageTag, error) {
	if !l.opts.NoBuild {
		res, err := l.builder.Build(ctx)
		if err != nil {
			return "", err
		}
		return res.Tag, nil
	}

	var tag container.ImageTag
	if l.opts.Build.Tag != "" {
		tag = container.ImageTag(l.opts.Build.Tag)
		if err := tag.Validate(); err != nil {
			return "", fmt.Errorf("invalid tag override: %w", err)
		}
	} else {
		plan, err := l.builder.BuildPlan(ctx)
		if err != nil {
			return "", err
		}
		tag = plan.Tag
	}

	exists, err := l.engine.ImageExists(ctx, tag)
	if err != nil {
		return "", fmt.Errorf("failed to check for image %s: %w", tag, err)
	}
	if !exists {
		return "", issue.NewErrorContext().
			WithOperation("locate image").
			WithResource(tag.String()).
			WithSuggestion("Run \"gantry build\" to build the image").
			WithSuggestion("Drop --no-build to let gantry build it as part of the run").
			Wrap(fmt.Errorf("image %s not found", tag)).
			BuildError()
	}
	return tag, nil
}

// runOptions assembles the engine options for a foreground application run.
func (l *Launcher) runOptions(tag container.ImageTag) (container.RunOptions, error) {
	env, err := BuildEnv(l.gf, l.root, l.opts.EnvFiles, l.opts.EnvVars)
	if err != nil {
		return container.RunOptions{}, err
	}

	ports, err := l.portMappings()
	if err != nil {
		return container.RunOptions{}, err
	}

	volumes, err := l.volumeMounts()
	if err != nil {
		return container.RunOptions{}, err
	}

	// Extra args extend the fixed entrypoint; they never replace it.
	var command []string
	if len(l.opts.Args) > 0 {
		command = append(command, l.gf.EntrypointArgv()...)
		command = append(command, l.opts.Args...)
	}

	return container.RunOptions{
		Image:       tag,
		Command:     command,
		Env:         env,
		Ports:       ports,
		Volumes:     volumes,
		Name:        l.containerName(),
		Remove:      true,
		Init:        true,
		Interactive: l.opts.Stdin != nil,
		Stdin:       l.opts.Stdin,
		Stdout:      l.opts.Stdout,
		Stderr:      l.opts.Stderr,
	}, nil
}

// containerName returns the managed container name: the override when set,
// otherwise gantry-<app>.
func (l *Launcher) containerName() container.ContainerName {
	if l.opts.Name != "" {
		return container.ContainerName(l.opts.Name)
	}
	return container.ContainerName("gantry-" + string(l.gf.App.Name))
}

// portMappings parses the descriptor's publish specs plus the flag extras.
func (l *Launcher) portMappings() ([]container.PortMapping, error) {
	specs := make([]string, 0, len(l.gf.Ports)+len(l.opts.Ports))
	specs = append(specs, l.gf.Ports...)
	specs = append(specs, l.opts.Ports...)

	mappings := make([]container.PortMapping, 0, len(specs))
	for _, s := range specs {
		m, err := container.ParsePortMapping(s)
		if err != nil {
			return nil, fmt.Errorf("invalid publish spec %q: %w", s, err)
		}
		mappings = append(mappings, m)
	}
	return mappings, nil
}

// volumeMounts parses the descriptor's mount specs plus the flag extras.
// Dot-relative host paths in the descriptor resolve against the project
// root; in flags they resolve against the invocation directory.
func (l *Launcher) volumeMounts() ([]container.VolumeMount, error) {
	mounts := make([]container.VolumeMount, 0, len(l.gf.Volumes)+len(l.opts.Volumes))

	for _, s := range l.gf.Volumes {
		m, err := parseVolume(s, l.root)
		if err != nil {
			return nil, err
		}
		mounts = append(mounts, m)
	}

	for _, s := range l.opts.Volumes {
		m, err := parseVolume(s, "")
		if err != nil {
			return nil, err
		}
		mounts = append(mounts, m)
	}

	return mounts, nil
}

// parseVolume parses one mount spec, resolving a dot-relative host path
// against base (or the working directory when base is empty). Bare names
// stay untouched: they are engine-managed named volumes.
func parseVolume(spec, base string) (container.VolumeMount, error) {
	m, err := container.ParseVolumeMount(spec)
	if err != nil {
		return m, fmt.Errorf("invalid volume spec %q: %w", spec, err)
	}

	host := string(m.HostPath)
	if strings.HasPrefix(host, ".") {
		if base == "" {
			base, err = os.Getwd()
			if err != nil {
				return m, fmt.Errorf("failed to resolve volume spec %q: %w", spec, err)
			}
		}
		m.HostPath = container.HostFilesystemPath(filepath.Join(base, host))
	}

	return m, nil
}
