// SPDX-License-Identifier: EPL-2.0

package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gantry-cli/internal/container"
	"gantry-cli/internal/issue"
	"gantry-cli/pkg/pyproject"
)

type (
	// Step is one pipeline operation, in execution order.
	Step struct {
		Name   string
		Detail string
	}

	// Plan is the full, inspectable build pipeline for a project: the
	// ordered steps, the rendered Dockerfile, lock verification findings,
	// and the derived cache keys and tag. Computing a Plan reads the
	// project tree but never touches a container engine.
	Plan struct {
		// App is the application name from the descriptor.
		App string
		// BaseImage is the resolved FROM reference.
		BaseImage string
		// Steps are the five pipeline operations.
		Steps []Step
		// Dockerfile is the rendered recipe.
		Dockerfile string
		// Files are the selected source files, slash-relative and sorted.
		Files []string
		// Findings are the lock verification results, warnings included.
		Findings pyproject.Findings
		// DependencyKey covers the dependency layer inputs.
		DependencyKey string
		// SourceKey covers the filtered source tree.
		SourceKey string
		// Tag is the derived content-addressed image tag.
		Tag container.ImageTag
	}
)

// BuildPlan computes the plan: load and parse the manifest pair, verify the
// lock, select source files, and derive keys and tag. The returned plan
// carries verification findings rather than failing on them; Build enforces
// the fail-fast contract while `gantry plan` shows the findings.
func (b *Builder) BuildPlan(ctx context.Context) (*Plan, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("plan canceled: %w", ctx.Err())
	default:
	}

	manifestPath := filepath.Join(b.root, pyproject.ManifestFilename)
	manifestBytes, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, missingBuildInput("load build inputs", pyproject.ManifestFilename, manifestPath, err)
	}

	lockPath := filepath.Join(b.root, pyproject.LockFilename)
	lockBytes, err := os.ReadFile(lockPath)
	if err != nil {
		return nil, missingBuildInput("load build inputs", pyproject.LockFilename, lockPath, err)
	}

	manifest, err := pyproject.ParseManifest(manifestBytes)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("parse manifest").
			WithResource(manifestPath).
			WithSuggestion("Check the [tool.poetry] section for syntax errors").
			Wrap(err).
			BuildError()
	}

	lock, err := pyproject.ParseLock(lockBytes)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("parse lock file").
			WithResource(lockPath).
			WithSuggestion("Run \"poetry lock\" to regenerate a well-formed lock file").
			Wrap(err).
			BuildError()
	}

	if err := checkReservedEnv(b.gf); err != nil {
		return nil, fmt.Errorf("invalid descriptor environment: %w", err)
	}

	findings := pyproject.Verify(manifest, lock)

	depKey := DependencyKey(b.gf, manifestBytes, lockBytes)

	include, ignore := sourcePatterns(b.gf)
	files, err := SelectSourceFiles(b.root, include, ignore)
	if err != nil {
		return nil, err
	}

	srcKey, err := SourceKey(b.root, files)
	if err != nil {
		return nil, err
	}

	return &Plan{
		App:           string(b.gf.App.Name),
		BaseImage:     b.gf.BaseImage(),
		Steps:         planSteps(b, len(files)),
		Dockerfile:    RenderDockerfile(b.gf),
		Files:         files,
		Findings:      findings,
		DependencyKey: depKey,
		SourceKey:     srcKey,
		Tag:           DeriveTag(b.gf, depKey, srcKey),
	}, nil
}

// planSteps names the five operations with one-line detail each.
func planSteps(b *Builder, fileCount int) []Step {
	gf := b.gf
	return []Step{
		{
			Name: "environment",
			Detail: fmt.Sprintf("%d fixed + %d descriptor vars, set before any install",
				len(RuntimeEnv(gf)), len(DescriptorEnv(gf))),
		},
		{
			Name:   "tool provisioning",
			Detail: fmt.Sprintf("pip install \"poetry==%s\"", gf.PoetryVersion()),
		},
		{
			Name: "dependency layer",
			Detail: fmt.Sprintf("%s + %s, poetry install --only %s --no-root",
				pyproject.ManifestFilename, pyproject.LockFilename, strings.Join(gf.Groups(), ",")),
		},
		{
			Name:   "source layer",
			Detail: fmt.Sprintf("%d files into %s", fileCount, Workdir),
		},
		{
			Name:   "entrypoint",
			Detail: strings.Join(gf.EntrypointArgv(), " "),
		},
	}
}

// Render formats the plan for terminal output.
func (p *Plan) Render() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Build plan for %s\n", p.App)
	fmt.Fprintf(&sb, "Base image: %s\n\n", p.BaseImage)

	for i, s := range p.Steps {
		fmt.Fprintf(&sb, "  %d. %-18s %s\n", i+1, s.Name, s.Detail)
	}
	sb.WriteString("\n")

	if len(p.Findings) > 0 {
		sb.WriteString("Lock verification:\n")
		for _, f := range p.Findings {
			fmt.Fprintf(&sb, "  %s\n", f)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "Dependency key: %s\n", p.DependencyKey)
	fmt.Fprintf(&sb, "Source key:     %s\n", p.SourceKey)
	fmt.Fprintf(&sb, "Image tag:      %s\n", p.Tag)

	return sb.String()
}
