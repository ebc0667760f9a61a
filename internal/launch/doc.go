// SPDX-License-Identifier: EPL-2.0

// Package launch runs built application images as foreground containers.
//
// The Launcher ensures the image for the current project state exists
// (building it unless told not to), assembles the launch environment, and
// hands the container's exit status back exactly as the application
// produced it. A non-zero application exit is a normal Result, never a Go
// error; Result.Error is reserved for infrastructure failures.
//
// Launch-time environment follows a four-level precedence (higher wins):
//
//  1. Descriptor env.files (dotenv, loaded in declaration order)
//  2. Descriptor env.vars
//  3. --env-file flag files (loaded in flag order)
//  4. --env-var flag values
//
// The image's baked-in ENV sits below all four; anything resolved here is
// passed to the engine and shadows it.
package launch
