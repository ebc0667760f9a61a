// SPDX-License-Identifier: EPL-2.0

// Package pyproject models the two Poetry files that pin a Python
// application's dependency set: the manifest (pyproject.toml) and the
// lock file (poetry.lock).
//
// It provides decoded views of both files, a PEP 440 version and
// constraint implementation covering the subset Poetry emits, and Verify,
// which cross-checks that the lock still satisfies the manifest, the
// precondition for a reproducible dependency layer. gantry runs Verify
// before staging a build context, so a stale or inconsistent lock fails
// the build before anything is copied.
//
// Dependency resolution itself is out of scope: Poetry resolves, gantry
// only checks that what Poetry resolved is internally consistent.
package pyproject
