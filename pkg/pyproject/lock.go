// SPDX-License-Identifier: EPL-2.0

package pyproject

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type (
	// Lock is the decoded poetry.lock: the exact resolved versions of every
	// direct and transitive dependency.
	Lock struct {
		// Packages are the [[package]] entries in file order.
		Packages []LockedPackage
		// Metadata is the trailing [metadata] table.
		Metadata LockMetadata
	}

	// LockedPackage is one resolved [[package]] entry. The same package may
	// appear more than once when disjoint python-version markers resolve to
	// different versions.
	LockedPackage struct {
		Name        string `toml:"name"`
		Version     string `toml:"version"`
		Description string `toml:"description"`
		Optional    bool   `toml:"optional"`
		// Category is the 1.x lock group field ("main", "dev").
		Category string `toml:"category"`
		// Groups is the 2.1+ lock group list; supersedes Category.
		Groups         []string `toml:"groups"`
		PythonVersions string   `toml:"python-versions"`
	}

	// LockMetadata is the [metadata] table.
	LockMetadata struct {
		// LockVersion is the lock file format version ("2.0", "2.1").
		LockVersion string `toml:"lock-version"`
		// PythonVersions mirrors the manifest's python constraint at the
		// time the lock was generated.
		PythonVersions string `toml:"python-versions"`
		// ContentHash is Poetry's hash of the manifest's relevant content;
		// Poetry refuses a lock whose hash no longer matches.
		ContentHash string `toml:"content-hash"`
	}
)

type rawLock struct {
	Package  []LockedPackage `toml:"package"`
	Metadata LockMetadata    `toml:"metadata"`
}

// LoadLock reads and parses a poetry.lock from disk.
func LoadLock(path string) (*Lock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lock file at %s: %w", path, err)
	}
	return ParseLock(data)
}

// ParseLock decodes poetry.lock bytes.
func ParseLock(data []byte) (*Lock, error) {
	var raw rawLock
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", LockFilename, err)
	}
	return &Lock{Packages: raw.Package, Metadata: raw.Metadata}, nil
}

// PackagesNamed returns the lock entries for a package, matching by PEP 503
// normalized name. Multiple entries are legal (per-environment versions).
func (l *Lock) PackagesNamed(name string) []LockedPackage {
	key := NormalizeName(name)
	var entries []LockedPackage
	for _, pkg := range l.Packages {
		if NormalizeName(pkg.Name) == key {
			entries = append(entries, pkg)
		}
	}
	return entries
}

// EffectiveGroups returns the dependency groups a locked package belongs to.
// Modern locks carry an explicit groups list, 1.x locks a category; entries
// with neither belong to the main group.
func (p LockedPackage) EffectiveGroups() []string {
	if len(p.Groups) > 0 {
		return p.Groups
	}
	if p.Category != "" {
		return []string{p.Category}
	}
	return []string{MainGroup}
}
