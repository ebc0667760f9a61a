// SPDX-License-Identifier: EPL-2.0

package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gantry-cli/internal/container"
	"gantry-cli/internal/issue"
	"gantry-cli/pkg/gantryfile"
	"gantry-cli/pkg/pyproject"
)

// Image labels applied to every gantry-built image. `gantry clean` uses
// them to find images it owns.
const (
	LabelManaged = "dev.gantry.managed"
	LabelApp     = "dev.gantry.app"
)

// ErrLockOutOfSync is the sentinel wrapped into every verification failure
// so callers can tell "fix your lock file" apart from engine trouble.
var ErrLockOutOfSync = errors.New("lock file out of sync")

// buildRetryBackoff is the base delay between transient-failure retries.
const buildRetryBackoff = 500 * time.Millisecond

type (
	// Options tune a single build invocation.
	Options struct {
		// Force rebuilds even when an image with the derived tag exists.
		Force bool
		// NoCache disables the engine's layer cache for this build.
		NoCache bool
		// Tag overrides the derived image tag when non-empty.
		Tag string
		// ContextDir is the parent directory for staged build contexts.
		// Empty means the OS temp directory. Useful when the engine cannot
		// read the default temp location (Snap-confined Docker).
		ContextDir string
		// Retries is the number of additional attempts after a transient
		// engine failure. Deterministic failures are never retried.
		Retries int
		// Output receives engine build progress. Defaults to os.Stderr.
		Output io.Writer
	}

	// Builder drives the build pipeline for one project.
	Builder struct {
		engine container.Engine
		gf     *gantryfile.Gantryfile
		root   string
		opts   Options
	}

	// Result is the outcome of a successful build.
	Result struct {
		// Tag identifies the runnable image.
		Tag container.ImageTag
		// Plan is the pipeline that produced (or would have produced) the
		// image.
		Plan *Plan
		// Cached is true when an image with the derived tag already
		// existed and no engine build ran.
		Cached bool
	}
)

// NewBuilder creates a Builder for the project rooted at root (the
// directory holding the gantryfile, manifest, and lock).
func NewBuilder(engine container.Engine, gf *gantryfile.Gantryfile, root string, opts Options) *Builder {
	return &Builder{engine: engine, gf: gf, root: root, opts: opts}
}

// Build runs the pipeline: verify the lock against the manifest, derive the
// tag, short-circuit when the image exists, then stage and drive the
// engine. Verification failures abort before anything is staged, and a
// failed engine build leaves no tagged image behind.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	plan, err := b.BuildPlan(ctx)
	if err != nil {
		return nil, err
	}

	if errs := plan.Findings.Errors(); len(errs) > 0 {
		return nil, lockOutOfSyncError(b.root, errs)
	}

	tag := plan.Tag
	if b.opts.Tag != "" {
		override := container.ImageTag(b.opts.Tag)
		if err := override.Validate(); err != nil {
			return nil, fmt.Errorf("invalid tag override: %w", err)
		}
		tag = override
	}

	if !b.opts.Force {
		exists, _ := b.engine.ImageExists(ctx, tag) //nolint:errcheck // Error treated as "not found"
		if exists {
			return &Result{Tag: tag, Plan: plan, Cached: true}, nil
		}
	}

	staged, err := b.Stage(ctx)
	if err != nil {
		return nil, err
	}
	defer staged.Cleanup()

	buildOpts := container.BuildOptions{
		ContextDir: container.HostFilesystemPath(staged.ContextDir),
		Dockerfile: container.HostFilesystemPath(staged.DockerfilePath),
		Tag:        tag,
		NoCache:    b.opts.NoCache,
		Labels: map[string]string{
			LabelManaged: "true",
			LabelApp:     string(b.gf.App.Name),
		},
		Stdout: b.output(),
		Stderr: b.output(),
	}

	attempts := b.opts.Retries + 1
	err = container.RetryWithBackoff(ctx, attempts, buildRetryBackoff, func(int) (bool, error) {
		buildErr := b.engine.Build(ctx, buildOpts)
		if buildErr == nil {
			return false, nil
		}
		// Only engine-transient failures retry; a failing install is
		// deterministic and surfaces immediately.
		return container.IsTransientError(buildErr), buildErr
	})
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("build image").
			WithResource(string(tag)).
			WithSuggestion("Inspect the build output above for the failing step").
			WithSuggestion("Run \"gantry plan\" to review the rendered Dockerfile").
			WithSuggestion("Use --no-cache if a stale layer looks involved").
			Wrap(err).
			BuildError()
	}

	return &Result{Tag: tag, Plan: plan}, nil
}

// output returns the build progress destination.
func (b *Builder) output() io.Writer {
	if b.opts.Output != nil {
		return b.opts.Output
	}
	return os.Stderr
}

// lockOutOfSyncError renders verification errors as one actionable failure.
// The build fails here, before any staging, so no partial artifact exists.
func lockOutOfSyncError(root string, errs pyproject.Findings) error {
	details := make([]string, len(errs))
	for i, f := range errs {
		details[i] = f.String()
	}

	return issue.NewErrorContext().
		WithOperation("verify lock file").
		WithResource(filepath.Join(root, pyproject.LockFilename)).
		WithSuggestion("Run \"poetry lock\" to regenerate the lock file from the manifest").
		WithSuggestion("Run \"gantry verify\" to list every finding, warnings included").
		Wrap(fmt.Errorf("%w with %s: %s",
			ErrLockOutOfSync, pyproject.ManifestFilename, strings.Join(details, "; "))).
		BuildError()
}
