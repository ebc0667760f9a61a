// SPDX-License-Identifier: EPL-2.0

package discovery

import (
	"errors"
	"os"
	"path/filepath"

	"gantry-cli/internal/issue"
	"gantry-cli/pkg/gantryfile"
)

// maxAscent caps how many parent directories Find inspects. The lexical
// walk always terminates on its own, but a start directory reached
// through pathological symlinks should not send us over the whole
// filesystem either.
const maxAscent = 64

// ErrNoGantryfile reports that no descriptor was found between the start
// directory and the filesystem root. Callers match it with errors.Is to
// distinguish "no project here" from a descriptor that failed to parse.
var ErrNoGantryfile = errors.New("no gantryfile found")

// Project is a located gantry project.
type Project struct {
	// Root is the absolute path of the directory holding the descriptor.
	// pyproject.toml and poetry.lock are expected directly under it.
	Root string

	// File is the absolute path of the descriptor itself.
	File string
}

// Find walks from startDir toward the filesystem root and returns the
// first directory containing gantryfile.cue. An empty startDir means the
// current working directory. The nearest descriptor wins: a project
// nested inside another project resolves to the inner one.
func Find(startDir string) (*Project, error) {
	dir := startDir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, issue.WrapWithOperation(err, "determine working directory")
		}
		dir = cwd
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, issue.WrapWithContext(err, "resolve start directory", dir)
	}

	current := absDir
	for range maxAscent {
		candidate := filepath.Join(current, gantryfile.Filename)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return &Project{Root: current, File: candidate}, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	return nil, issue.NewErrorContext().
		WithOperation("locate gantryfile").
		WithResource(absDir).
		WithSuggestion("Run \"gantry init\" to create a descriptor in the project root").
		WithSuggestion("Or run gantry from inside a directory tree that has one").
		Wrap(ErrNoGantryfile).
		BuildError()
}

// Load finds the project for startDir and parses its descriptor.
// Validation and defaulting happen during parsing, so the returned
// Gantryfile is ready to build from.
func Load(startDir string) (*gantryfile.Gantryfile, *Project, error) {
	proj, err := Find(startDir)
	if err != nil {
		return nil, nil, err
	}

	gf, err := gantryfile.Parse(proj.File)
	if err != nil {
		return nil, nil, err
	}

	return gf, proj, nil
}
