// SPDX-License-Identifier: EPL-2.0

package build

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gantry-cli/internal/issue"
	"gantry-cli/pkg/gantryfile"
	"gantry-cli/pkg/pyproject"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultIgnores are source patterns excluded from every build context, on
// top of the descriptor's own source.ignore list.
var DefaultIgnores = []string{
	".git/**",
	"**/__pycache__/**",
	"**/*.pyc",
	"**/*.pyo",
	".venv/**",
	"**/.pytest_cache/**",
	"**/.mypy_cache/**",
	"**/.ruff_cache/**",
	".idea/**",
	".vscode/**",
	"**/.DS_Store",
	gantryfile.Filename,
}

// prunedDirs are never descended into, regardless of include patterns.
// They are either huge (.git, .venv) or pure tool residue; skipping them
// here keeps staging and source hashing fast on real checkouts.
var prunedDirs = map[string]bool{
	".git":          true,
	".venv":         true,
	"__pycache__":   true,
	".pytest_cache": true,
	".mypy_cache":   true,
	".ruff_cache":   true,
	".idea":         true,
	".vscode":       true,
}

// StagedContext is a fully prepared build input under a temp directory:
// the rendered Dockerfile next to a context directory holding the manifest
// pair and the filtered source tree.
type StagedContext struct {
	// Root is the temp directory holding everything below.
	Root string
	// ContextDir is the staged build context.
	ContextDir string
	// DockerfilePath is the rendered Dockerfile, outside the context so it
	// is never copied into the image by the source layer.
	DockerfilePath string
	// Files are the staged source files as slash-relative paths, sorted.
	Files []string
}

// Cleanup removes the staged directory. Safe to call on a nil receiver and
// more than once.
func (s *StagedContext) Cleanup() {
	if s == nil || s.Root == "" {
		return
	}
	_ = os.RemoveAll(s.Root) // Temp dir; removal error non-critical
}

// sourcePatterns resolves the descriptor's include/ignore patterns with
// defaults applied: include everything, ignore the default set plus the
// descriptor's additions.
func sourcePatterns(gf *gantryfile.Gantryfile) (include, ignore []string) {
	include = []string{"**"}
	ignore = append(ignore, DefaultIgnores...)
	if gf.Source != nil {
		if len(gf.Source.Include) > 0 {
			include = gf.Source.Include
		}
		ignore = append(ignore, gf.Source.Ignore...)
	}
	return include, ignore
}

// SelectSourceFiles walks root and returns the slash-relative paths of
// regular files selected by the include/ignore patterns, sorted. The
// manifest and lock file are excluded: staging copies them explicitly so
// the dependency layer owns them.
func SelectSourceFiles(root string, include, ignore []string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		if d.IsDir() {
			if prunedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if rel == pyproject.ManifestFilename || rel == pyproject.LockFilename {
			return nil
		}
		if !matchesAny(include, rel) || matchesAny(ignore, rel) {
			return nil
		}

		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk source tree: %w", err)
	}

	sort.Strings(files)
	return files, nil
}

// matchesAny reports whether rel matches any of the patterns. Patterns are
// validated at descriptor load time, so match errors are treated as
// no-match.
func matchesAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		ok, err := doublestar.Match(p, rel)
		if err == nil && ok {
			return true
		}
	}
	return false
}

// Stage prepares the build context under a temp directory: the manifest and
// lock are copied first, then the filtered source files, then the rendered
// Dockerfile is written beside the context. A missing manifest or lock
// aborts before anything is copied.
func (b *Builder) Stage(ctx context.Context) (*StagedContext, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("staging canceled: %w", ctx.Err())
	default:
	}

	manifestPath := filepath.Join(b.root, pyproject.ManifestFilename)
	lockPath := filepath.Join(b.root, pyproject.LockFilename)

	if _, err := os.Stat(manifestPath); err != nil {
		return nil, missingBuildInput("stage build context", pyproject.ManifestFilename, manifestPath, err)
	}
	if _, err := os.Stat(lockPath); err != nil {
		return nil, missingBuildInput("stage build context", pyproject.LockFilename, lockPath, err)
	}

	parent := b.opts.ContextDir
	if parent == "" {
		parent = os.TempDir()
	}
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create build context parent directory: %w", err)
	}

	tmpDir, err := os.MkdirTemp(parent, "gantry-ctx-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}

	staged := &StagedContext{
		Root:           tmpDir,
		ContextDir:     filepath.Join(tmpDir, "context"),
		DockerfilePath: filepath.Join(tmpDir, "Dockerfile"),
	}

	if err := os.MkdirAll(staged.ContextDir, 0o755); err != nil {
		staged.Cleanup()
		return nil, fmt.Errorf("failed to create context directory: %w", err)
	}

	// Dependency layer inputs first.
	if err := copyFile(manifestPath, filepath.Join(staged.ContextDir, pyproject.ManifestFilename)); err != nil {
		staged.Cleanup()
		return nil, fmt.Errorf("failed to stage %s: %w", pyproject.ManifestFilename, err)
	}
	if err := copyFile(lockPath, filepath.Join(staged.ContextDir, pyproject.LockFilename)); err != nil {
		staged.Cleanup()
		return nil, fmt.Errorf("failed to stage %s: %w", pyproject.LockFilename, err)
	}

	include, ignore := sourcePatterns(b.gf)
	files, err := SelectSourceFiles(b.root, include, ignore)
	if err != nil {
		staged.Cleanup()
		return nil, err
	}

	for _, rel := range files {
		src := filepath.Join(b.root, filepath.FromSlash(rel))
		dst := filepath.Join(staged.ContextDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			staged.Cleanup()
			return nil, fmt.Errorf("failed to create directory for %s: %w", rel, err)
		}
		if err := copyFile(src, dst); err != nil {
			staged.Cleanup()
			return nil, fmt.Errorf("failed to stage %s: %w", rel, err)
		}
	}
	staged.Files = files

	dockerfile := RenderDockerfile(b.gf)
	if err := os.WriteFile(staged.DockerfilePath, []byte(dockerfile), 0o644); err != nil {
		staged.Cleanup()
		return nil, fmt.Errorf("failed to write Dockerfile: %w", err)
	}

	return staged, nil
}

// missingBuildInput builds the actionable error for an absent manifest or
// lock file.
func missingBuildInput(operation, name, path string, cause error) error {
	suggestion := "Run \"poetry init\" to create the project manifest"
	if name == pyproject.LockFilename {
		suggestion = "Run \"poetry lock\" to generate the lock file"
	}
	return issue.NewErrorContext().
		WithOperation(operation).
		WithResource(path).
		WithSuggestion(suggestion).
		WithSuggestion("Check that the gantryfile sits in the project root next to " + name).
		Wrap(fmt.Errorf("%s not found: %w", name, cause)).
		BuildError()
}

// copyFile copies src to dst preserving the file mode.
func copyFile(src, dst string) (err error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer func() { _ = srcFile.Close() }() // Read-only file; close error non-critical

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat source file: %w", err)
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode())
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer func() {
		if closeErr := dstFile.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close destination file: %w", closeErr)
		}
	}()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("failed to copy file contents: %w", err)
	}

	return nil
}
