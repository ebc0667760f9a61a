// SPDX-License-Identifier: EPL-2.0

// Package discovery locates the project a gantry command operates on.
//
// A project is identified by its descriptor: the directory containing
// gantryfile.cue is the project root, and the Poetry manifest and lock
// file are resolved relative to that root. Find walks from a start
// directory toward the filesystem root, so gantry can be invoked from
// any subdirectory of a project the same way git finds its repository.
package discovery
