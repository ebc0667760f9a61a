// SPDX-License-Identifier: EPL-2.0

package watch

import (
	"context"

	"gantry-cli/pkg/gantryfile"
)

// alwaysWatch are files whose changes always warrant a rebuild no matter
// how narrow the descriptor's source.include is: the manifest and lock
// move the dependency layer, and the descriptor moves everything.
var alwaysWatch = []string{
	"pyproject.toml",
	"poetry.lock",
	gantryfile.Filename,
}

// ProjectConfig derives a watcher Config from a project descriptor. The
// descriptor's source.include narrows what triggers a rebuild and
// source.ignore extends the built-in ignores, mirroring how the build
// stage selects the source layer. The manifest, lock file and descriptor
// are always watched, even under a narrow include list.
func ProjectConfig(gf *gantryfile.Gantryfile, root string, onChange func(ctx context.Context, changed []string) error) Config {
	cfg := Config{
		BaseDir:  root,
		OnChange: onChange,
	}

	if gf.Source != nil {
		if len(gf.Source.Include) > 0 {
			cfg.Patterns = append(cfg.Patterns, gf.Source.Include...)
			cfg.Patterns = append(cfg.Patterns, alwaysWatch...)
		}
		cfg.Ignore = append(cfg.Ignore, gf.Source.Ignore...)
	}

	return cfg
}

// ForProject builds a Watcher for the project rooted at root, watching
// what the descriptor says the image is built from.
func ForProject(gf *gantryfile.Gantryfile, root string, onChange func(ctx context.Context, changed []string) error) (*Watcher, error) {
	return New(ProjectConfig(gf, root, onChange))
}
