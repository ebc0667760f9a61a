// SPDX-License-Identifier: EPL-2.0

package pyproject

import (
	"fmt"
	"strings"
)

type (
	// Severity classifies a verification finding.
	Severity int

	// Finding is one verification result, attributed to a package when one
	// applies.
	Finding struct {
		// Severity is SeverityError for contract violations that must fail
		// the build, SeverityWarning for staleness smells.
		Severity Severity
		// Package is the normalized package name, empty for file-level
		// findings.
		Package string
		// Message describes the problem.
		Message string
	}

	// Findings is the ordered result of Verify.
	Findings []Finding
)

const (
	// SeverityWarning marks findings that do not fail verification.
	SeverityWarning Severity = iota
	// SeverityError marks contract violations.
	SeverityError
)

// String implements fmt.Stringer.
func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// String renders the finding as a single "severity: package: message" line.
func (f Finding) String() string {
	if f.Package != "" {
		return fmt.Sprintf("%s: %s: %s", f.Severity, f.Package, f.Message)
	}
	return fmt.Sprintf("%s: %s", f.Severity, f.Message)
}

// HasErrors reports whether any finding is an error.
func (fs Findings) HasErrors() bool {
	for _, f := range fs {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns only the error findings.
func (fs Findings) Errors() Findings {
	var out Findings
	for _, f := range fs {
		if f.Severity == SeverityError {
			out = append(out, f)
		}
	}
	return out
}

// knownLockVersions are the poetry.lock format versions gantry understands.
var knownLockVersions = map[string]bool{
	"1.1": true,
	"2.0": true,
	"2.1": true,
}

// Verify cross-checks a manifest against its lock file. It returns all
// findings rather than failing on the first one so the user sees the full
// picture; callers treat any SeverityError finding as fatal.
//
// Checks performed:
//   - the python constraint and every dependency constraint parse
//   - every declared dependency appears in the lock (python aside)
//   - some locked version of each declared dependency satisfies its
//     constraint
//   - lock entries whose groups the manifest no longer declares are flagged
//     as stale
//   - the lock metadata carries a content hash and a known lock-version,
//     and its recorded python constraint matches the manifest's
func Verify(manifest *Manifest, lock *Lock) Findings {
	var findings Findings

	if manifest.PythonConstraint != "" {
		if _, err := ParseConstraint(manifest.PythonConstraint); err != nil {
			findings = append(findings, Finding{
				Severity: SeverityError,
				Package:  "python",
				Message:  fmt.Sprintf("unparseable interpreter constraint %q", manifest.PythonConstraint),
			})
		}
	}

	locked := make(map[string][]LockedPackage)
	for _, pkg := range lock.Packages {
		key := NormalizeName(pkg.Name)
		locked[key] = append(locked[key], pkg)
	}

	for _, group := range manifest.GroupNames() {
		for _, dep := range manifest.Groups[group] {
			findings = append(findings, verifyDependency(group, dep, locked)...)
		}
	}

	for _, pkg := range lock.Packages {
		for _, group := range pkg.EffectiveGroups() {
			if !manifest.HasGroup(group) {
				findings = append(findings, Finding{
					Severity: SeverityWarning,
					Package:  NormalizeName(pkg.Name),
					Message:  fmt.Sprintf("locked for group %q which %s does not declare (stale lock?)", group, ManifestFilename),
				})
			}
		}
	}

	findings = append(findings, verifyMetadata(manifest, lock.Metadata)...)

	return findings
}

// verifyDependency checks one declared dependency against the lock index.
func verifyDependency(group string, dep Dependency, locked map[string][]LockedPackage) Findings {
	key := NormalizeName(dep.Name)
	entries := locked[key]

	if len(entries) == 0 {
		severity := SeverityError
		if dep.Optional {
			// Optional dependencies enter the lock only while an extra
			// references them, so absence is suspicious but not fatal.
			severity = SeverityWarning
		}
		return Findings{{
			Severity: severity,
			Package:  key,
			Message:  fmt.Sprintf("declared in group %q but missing from %s (run \"poetry lock\")", group, LockFilename),
		}}
	}

	if dep.Source != "" || dep.Constraint == "" {
		// Path/git/url dependencies carry no registry version to check.
		return nil
	}

	constraint, err := ParseConstraint(dep.Constraint)
	if err != nil {
		return Findings{{
			Severity: SeverityError,
			Package:  key,
			Message:  fmt.Sprintf("unparseable constraint %q", dep.Constraint),
		}}
	}

	var findings Findings
	var versions []string
	satisfied := false
	for _, entry := range entries {
		v, err := ParseVersion(entry.Version)
		if err != nil {
			findings = append(findings, Finding{
				Severity: SeverityError,
				Package:  key,
				Message:  fmt.Sprintf("locked version %q is not a valid version", entry.Version),
			})
			continue
		}
		versions = append(versions, entry.Version)
		if constraint.Matches(v) {
			satisfied = true
		}
	}
	if !satisfied && len(versions) > 0 {
		findings = append(findings, Finding{
			Severity: SeverityError,
			Package:  key,
			Message: fmt.Sprintf("locked version %s does not satisfy constraint %q (run \"poetry lock\")",
				strings.Join(versions, ", "), dep.Constraint),
		})
	}
	return findings
}

// verifyMetadata checks the [metadata] table for staleness signals.
func verifyMetadata(manifest *Manifest, meta LockMetadata) Findings {
	var findings Findings

	if meta.ContentHash == "" {
		findings = append(findings, Finding{
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("%s metadata has no content-hash; cannot tell whether the lock is current", LockFilename),
		})
	}
	if meta.LockVersion != "" && !knownLockVersions[meta.LockVersion] {
		findings = append(findings, Finding{
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("lock-version %q is newer than this tool understands", meta.LockVersion),
		})
	}
	if meta.PythonVersions != "" && manifest.PythonConstraint != "" &&
		strings.TrimSpace(meta.PythonVersions) != strings.TrimSpace(manifest.PythonConstraint) {
		findings = append(findings, Finding{
			Severity: SeverityWarning,
			Package:  "python",
			Message: fmt.Sprintf("lock was generated for python %q but the manifest declares %q (stale lock?)",
				meta.PythonVersions, manifest.PythonConstraint),
		})
	}

	return findings
}
