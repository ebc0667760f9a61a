// SPDX-License-Identifier: EPL-2.0

// Package container provides a unified abstraction layer for container engines (Docker/Podman).
//
// The Engine interface defines the operations gantry needs to build and launch
// application images: Build, Run, ImageExists, ListImages, RemoveImage, and Remove.
// Two implementations are provided: DockerEngine and PodmanEngine, both embedding
// BaseCLIEngine for shared CLI argument construction and command execution.
//
// Engine selection uses NewEngine(EngineType) with automatic fallback if the preferred
// engine is unavailable, or AutoDetectEngine() for preference-less detection (Docker is
// tried first).
//
// A container's exit status is never surfaced as a Go error: Run captures it in
// RunResult.ExitCode so callers can propagate the application's own status to the
// host shell. Only infrastructure failures (missing binary, engine daemon errors)
// populate RunResult.Error.
package container
