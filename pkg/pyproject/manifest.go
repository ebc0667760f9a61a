// SPDX-License-Identifier: EPL-2.0

package pyproject

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	// ManifestFilename is the Poetry project manifest name.
	ManifestFilename = "pyproject.toml"
	// LockFilename is the Poetry lock file name.
	LockFilename = "poetry.lock"
	// MainGroup is the implicit dependency group holding
	// [tool.poetry.dependencies]; it is the group the image installs.
	MainGroup = "main"
)

// ErrNoPoetrySection is returned when a pyproject.toml carries no
// [tool.poetry] table at all.
var ErrNoPoetrySection = errors.New("pyproject.toml has no [tool.poetry] section")

type (
	// Manifest is the decoded [tool.poetry] view of a pyproject.toml.
	Manifest struct {
		// Name is the project name.
		Name string
		// Version is the project's own version string.
		Version string
		// Description is the short project description.
		Description string
		// PythonConstraint is the interpreter constraint declared under
		// dependencies.python ("^3.11"), empty when absent.
		PythonConstraint string
		// Groups maps group name to its declared dependencies, sorted by
		// name. The main group holds [tool.poetry.dependencies] minus the
		// python entry; named groups come from [tool.poetry.group.*].
		Groups map[string][]Dependency
	}

	// Dependency is one declared dependency with its version constraint.
	Dependency struct {
		// Name is the package name as written in the manifest.
		Name string
		// Constraint is the raw version constraint ("^3.0", ">=2,<3", "*").
		// Empty for path/git/url dependencies.
		Constraint string
		// Extras lists requested package extras.
		Extras []string
		// Optional marks extras-gated dependencies, installed only when an
		// extra of this project requests them.
		Optional bool
		// Source is "path", "git", "url" or "file" for non-registry
		// dependencies. Version constraint checks do not apply to these.
		Source string
	}
)

// normalizeNamePattern collapses the separator runs PEP 503 treats as equal.
var normalizeNamePattern = regexp.MustCompile(`[-_.]+`)

// NormalizeName canonicalizes a package name per PEP 503 so manifest and
// lock spellings compare equal ("Typing_Extensions" → "typing-extensions").
func NormalizeName(name string) string {
	return normalizeNamePattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

// rawManifest mirrors the slice of pyproject.toml gantry reads. Dependency
// values stay untyped here because Poetry allows a bare constraint string,
// an inline table, or an array of tables per dependency.
type rawManifest struct {
	Tool struct {
		Poetry struct {
			Name            string              `toml:"name"`
			Version         string              `toml:"version"`
			Description     string              `toml:"description"`
			Dependencies    map[string]any      `toml:"dependencies"`
			DevDependencies map[string]any      `toml:"dev-dependencies"`
			Group           map[string]rawGroup `toml:"group"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

type rawGroup struct {
	Dependencies map[string]any `toml:"dependencies"`
}

// LoadManifest reads and parses a pyproject.toml from disk.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest at %s: %w", path, err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes the [tool.poetry] section of pyproject.toml bytes.
func ParseManifest(data []byte) (*Manifest, error) {
	var raw rawManifest
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ManifestFilename, err)
	}

	poetry := raw.Tool.Poetry
	if poetry.Name == "" && len(poetry.Dependencies) == 0 && len(poetry.Group) == 0 {
		return nil, ErrNoPoetrySection
	}

	m := &Manifest{
		Name:        poetry.Name,
		Version:     poetry.Version,
		Description: poetry.Description,
		Groups:      make(map[string][]Dependency),
	}

	main := make([]Dependency, 0, len(poetry.Dependencies))
	for _, name := range slices.Sorted(maps.Keys(poetry.Dependencies)) {
		dep, err := decodeDependency(name, poetry.Dependencies[name])
		if err != nil {
			return nil, err
		}
		if NormalizeName(name) == "python" {
			// The python entry constrains the interpreter, it is not a package.
			m.PythonConstraint = dep.Constraint
			continue
		}
		main = append(main, dep)
	}
	m.Groups[MainGroup] = main

	for groupName, group := range poetry.Group {
		deps := make([]Dependency, 0, len(group.Dependencies))
		for _, name := range slices.Sorted(maps.Keys(group.Dependencies)) {
			dep, err := decodeDependency(name, group.Dependencies[name])
			if err != nil {
				return nil, err
			}
			deps = append(deps, dep)
		}
		m.Groups[groupName] = deps
	}

	// Poetry's pre-1.2 spelling for the dev group.
	if len(poetry.DevDependencies) > 0 {
		deps := m.Groups["dev"]
		for _, name := range slices.Sorted(maps.Keys(poetry.DevDependencies)) {
			dep, err := decodeDependency(name, poetry.DevDependencies[name])
			if err != nil {
				return nil, err
			}
			deps = append(deps, dep)
		}
		m.Groups["dev"] = deps
	}

	return m, nil
}

// GroupNames returns the declared group names, main first, the rest sorted.
func (m *Manifest) GroupNames() []string {
	names := make([]string, 0, len(m.Groups))
	for name := range m.Groups {
		if name != MainGroup {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return append([]string{MainGroup}, names...)
}

// HasGroup reports whether the manifest declares the named group. The main
// group always exists.
func (m *Manifest) HasGroup(name string) bool {
	if name == MainGroup {
		return true
	}
	_, ok := m.Groups[name]
	return ok
}

// decodeDependency normalizes the three shapes Poetry allows for a
// dependency value: a bare constraint string, an inline table, or an array
// of tables (multiple constraints targeting disjoint environments).
func decodeDependency(name string, value any) (Dependency, error) {
	switch v := value.(type) {
	case string:
		return Dependency{Name: name, Constraint: v}, nil
	case map[string]any:
		return decodeDependencyTable(name, v)
	case []any:
		var constraints []string
		for _, elem := range v {
			table, ok := elem.(map[string]any)
			if !ok {
				return Dependency{}, fmt.Errorf("dependency %q: multiple-constraint entries must be tables, got %T", name, elem)
			}
			dep, err := decodeDependencyTable(name, table)
			if err != nil {
				return Dependency{}, err
			}
			if dep.Source != "" {
				return Dependency{Name: name, Source: dep.Source}, nil
			}
			constraints = append(constraints, dep.Constraint)
		}
		// Each element targets a disjoint environment, so any locked
		// version satisfying one of them is consistent.
		return Dependency{Name: name, Constraint: strings.Join(constraints, " || ")}, nil
	default:
		return Dependency{}, fmt.Errorf("dependency %q: unsupported constraint type %T", name, value)
	}
}

func decodeDependencyTable(name string, table map[string]any) (Dependency, error) {
	dep := Dependency{Name: name}
	if v, ok := table["version"].(string); ok {
		dep.Constraint = v
	}
	if v, ok := table["optional"].(bool); ok {
		dep.Optional = v
	}
	if extras, ok := table["extras"].([]any); ok {
		for _, e := range extras {
			if s, ok := e.(string); ok {
				dep.Extras = append(dep.Extras, s)
			}
		}
	}
	for _, source := range []string{"path", "git", "url", "file"} {
		if _, ok := table[source]; ok {
			dep.Source = source
			break
		}
	}
	if dep.Constraint == "" && dep.Source == "" {
		return Dependency{}, fmt.Errorf("dependency %q: no version constraint or source", name)
	}
	return dep, nil
}
