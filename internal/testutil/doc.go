// SPDX-License-Identifier: EPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Common helpers include environment variable management (MustSetenv,
// MustUnsetenv), directory creation (MustMkdirAll), and the process-wide
// ContainerSemaphore that serializes container-backed integration tests.
package testutil
