// SPDX-License-Identifier: EPL-2.0

package watch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// isIgnoredByDefaults reports whether rel matches any default ignore
// pattern. Test-only helper that avoids needing a full Watcher instance.
func isIgnoredByDefaults(rel string) bool {
	normalized := filepath.ToSlash(rel)
	for _, pat := range defaultIgnores {
		if matched, matchErr := doublestar.Match(pat, normalized); matchErr == nil && matched {
			return true
		}
	}
	return false
}

// TestWatcherDebounce verifies that multiple rapid filesystem events are
// coalesced into a single callback invocation containing all changed paths.
func TestWatcherDebounce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	var (
		mu        sync.Mutex
		calls     int
		collected []string
	)

	done := make(chan struct{})

	w, err := New(Config{
		BaseDir:  dir,
		Debounce: 100 * time.Millisecond,
		Stdout:   &bytes.Buffer{},
		Stderr:   &bytes.Buffer{},
		OnChange: func(_ context.Context, changed []string) error {
			mu.Lock()
			defer mu.Unlock()
			calls++
			collected = append(collected, changed...)
			close(done)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	// Write three files in rapid succession, well within the debounce
	// window.
	for _, name := range []string{"bot.py", "handlers.py", "config.py"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("# code"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		// Small pause so events arrive as separate fsnotify events rather
		// than being batched by the OS.
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}

	// Allow a brief settle for any additional spurious callbacks.
	time.Sleep(200 * time.Millisecond)

	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()

	if calls != 1 {
		t.Errorf("expected 1 debounced callback, got %d", calls)
	}

	slices.Sort(collected)
	for _, want := range []string{"bot.py", "config.py", "handlers.py"} {
		if !slices.Contains(collected, want) {
			t.Errorf("expected %q in changed files, got %v", want, collected)
		}
	}
}

// TestWatcherIgnorePatterns confirms that files matching user-supplied
// ignore patterns do not trigger the OnChange callback.
func TestWatcherIgnorePatterns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	callbackFired := make(chan []string, 10)

	w, err := New(Config{
		BaseDir:  dir,
		Ignore:   []string{"**/*.log"},
		Debounce: 50 * time.Millisecond,
		Stdout:   &bytes.Buffer{},
		Stderr:   &bytes.Buffer{},
		OnChange: func(_ context.Context, changed []string) error {
			callbackFired <- changed
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	// An ignored file must not trigger the callback.
	if err := os.WriteFile(filepath.Join(dir, "debug.log"), []byte("log"), 0o644); err != nil {
		t.Fatalf("write debug.log: %v", err)
	}

	// Wait long enough for a debounce cycle to complete.
	time.Sleep(200 * time.Millisecond)

	// A non-ignored file must.
	if err := os.WriteFile(filepath.Join(dir, "bot.py"), []byte("# code"), 0o644); err != nil {
		t.Fatalf("write bot.py: %v", err)
	}

	select {
	case changed := <-callbackFired:
		if slices.Contains(changed, "debug.log") {
			t.Error("ignored file debug.log appeared in changed set")
		}
		if !slices.Contains(changed, "bot.py") {
			t.Errorf("expected bot.py in changed set, got %v", changed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback on non-ignored file")
	}

	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("Run() error: %v", err)
	}
}

// TestWatcherContextCancel verifies that Run returns cleanly when its
// context is cancelled.
func TestWatcherContextCancel(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	w, err := New(Config{
		BaseDir:  dir,
		Debounce: 50 * time.Millisecond,
		Stdout:   &bytes.Buffer{},
		Stderr:   &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	// Give the event loop time to start.
	time.Sleep(50 * time.Millisecond)

	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run() returned error on cancel: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after context cancellation")
	}
}

// TestDefaultIgnores pins the built-in ignore set to the paths a Python
// project actually generates noise in.
func TestDefaultIgnores(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    string
		ignored bool
	}{
		{".git/config", true},
		{".git/objects/ab/cd1234", true},
		{".venv/lib/python3.11/site-packages/aiogram/bot.py", true},
		{"app/__pycache__/bot.cpython-311.pyc", true},
		{"app/bot/handlers.pyc", true},
		{"app/bot/handlers.pyo", true},
		{".pytest_cache/v/cache/lastfailed", true},
		{".mypy_cache/3.11/app/bot.meta.json", true},
		{".ruff_cache/0.1.6/12345", true},
		{"bot.py.swp", true},
		{"bot.py.swo", true},
		{"backup~", true},
		{".DS_Store", true},
		{"app/.DS_Store", true},
		// Files that drive rebuilds must not be ignored.
		{"app/bot/__main__.py", false},
		{"pyproject.toml", false},
		{"poetry.lock", false},
		{"gantryfile.cue", false},
		{".gitignore", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			got := isIgnoredByDefaults(tt.path)
			if got != tt.ignored {
				t.Errorf("isIgnoredByDefaults(%q) = %v, want %v", tt.path, got, tt.ignored)
			}
		})
	}
}

// TestWatcherSkipIfBusy verifies that the atomic skip-if-busy guard
// prevents overlapping callback invocations when the callback outlasts
// the debounce period.
func TestWatcherSkipIfBusy(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	var (
		mu    sync.Mutex
		calls int
	)

	// Callback blocks for 300ms, debounce is 50ms; the write landing
	// while the first callback runs should be skipped or deferred, never
	// concurrent.
	firstCallDone := make(chan struct{})
	stderrBuf := &bytes.Buffer{}

	w, err := New(Config{
		BaseDir:  dir,
		Debounce: 50 * time.Millisecond,
		Stdout:   &bytes.Buffer{},
		Stderr:   stderrBuf,
		OnChange: func(_ context.Context, _ []string) error {
			mu.Lock()
			calls++
			callNum := calls
			mu.Unlock()

			if callNum == 1 {
				time.Sleep(300 * time.Millisecond)
				close(firstCallDone)
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	if err := os.WriteFile(filepath.Join(dir, "first.py"), []byte("1"), 0o644); err != nil {
		t.Fatalf("write first.py: %v", err)
	}

	// Wait for the debounce to fire and the callback to start.
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "second.py"), []byte("2"), 0o644); err != nil {
		t.Fatalf("write second.py: %v", err)
	}

	select {
	case <-firstCallDone:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for first callback")
	}

	// Allow time for the second debounce cycle to complete or be skipped.
	time.Sleep(200 * time.Millisecond)

	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()

	// One call (strict skip) or two (second debounce fired after the
	// first callback completed) are both fine; more means overlap.
	if calls > 2 {
		t.Errorf("expected at most 2 callback invocations, got %d", calls)
	}
}

// TestWatcherClearScreen verifies that ClearScreen writes the ANSI clear
// escape sequence before invoking the callback.
func TestWatcherClearScreen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	done := make(chan struct{})
	stdoutBuf := &bytes.Buffer{}

	w, err := New(Config{
		BaseDir:     dir,
		Debounce:    50 * time.Millisecond,
		ClearScreen: true,
		Stdout:      stdoutBuf,
		Stderr:      &bytes.Buffer{},
		OnChange: func(_ context.Context, _ []string) error {
			close(done)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	if err := os.WriteFile(filepath.Join(dir, "bot.py"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write bot.py: %v", err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}

	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	out := stdoutBuf.String()
	if !strings.Contains(out, "\033[2J\033[H") {
		t.Errorf("expected ANSI clear sequence in stdout, got %q", out)
	}
}

// TestWatcherInvalidPattern verifies that New fails fast at construction
// time when given an invalid glob pattern.
func TestWatcherInvalidPattern(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := New(Config{
		BaseDir:  dir,
		Patterns: []string{"[invalid"},
		Debounce: 50 * time.Millisecond,
		Stdout:   &bytes.Buffer{},
		Stderr:   &bytes.Buffer{},
	})
	if err == nil {
		t.Fatal("New() should return an error for an invalid glob pattern")
	}

	if !strings.Contains(err.Error(), "invalid watch pattern") {
		t.Errorf("error message should mention invalid watch pattern, got: %v", err)
	}
}

// TestWatcherDoubleRunError verifies that calling Run a second time
// returns an error immediately rather than starting a second event loop.
func TestWatcherDoubleRunError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	w, err := New(Config{
		BaseDir:  dir,
		Debounce: 50 * time.Millisecond,
		Stdout:   &bytes.Buffer{},
		Stderr:   &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	// Give the event loop time to start.
	time.Sleep(50 * time.Millisecond)

	err = w.Run(ctx)
	if err == nil {
		t.Fatal("second Run() call should return an error")
	}

	if !strings.Contains(err.Error(), "Run called more than once") {
		t.Errorf("error message should mention double-run, got: %v", err)
	}

	cancel()
	if firstErr := <-errCh; firstErr != nil {
		t.Fatalf("first Run() returned error: %v", firstErr)
	}
}

// TestWatcherPatternFiltering verifies that only events matching the
// configured glob patterns trigger the callback.
func TestWatcherPatternFiltering(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	callbackFired := make(chan []string, 10)

	w, err := New(Config{
		BaseDir:  dir,
		Patterns: []string{"**/*.py"},
		Debounce: 50 * time.Millisecond,
		Stdout:   &bytes.Buffer{},
		Stderr:   &bytes.Buffer{},
		OnChange: func(_ context.Context, changed []string) error {
			callbackFired <- changed
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	// A non-matching file first.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("text"), 0o644); err != nil {
		t.Fatalf("write notes.txt: %v", err)
	}

	// Wait out a debounce cycle to ensure the .txt write does not fire.
	time.Sleep(200 * time.Millisecond)

	// Then a matching one.
	if err := os.WriteFile(filepath.Join(dir, "bot.py"), []byte("# code"), 0o644); err != nil {
		t.Fatalf("write bot.py: %v", err)
	}

	select {
	case changed := <-callbackFired:
		if slices.Contains(changed, "notes.txt") {
			t.Error("non-matching file notes.txt appeared in changed set")
		}
		if !slices.Contains(changed, "bot.py") {
			t.Errorf("expected bot.py in changed set, got %v", changed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback on .py file")
	}

	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("Run() error: %v", err)
	}
}

// TestWatcherNewDirectoriesAreWatched verifies that directories created
// after startup get watched, so a freshly added package still triggers
// rebuilds.
func TestWatcherNewDirectoriesAreWatched(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	callbackFired := make(chan []string, 10)

	w, err := New(Config{
		BaseDir:  dir,
		Debounce: 50 * time.Millisecond,
		Stdout:   &bytes.Buffer{},
		Stderr:   &bytes.Buffer{},
		OnChange: func(_ context.Context, changed []string) error {
			callbackFired <- changed
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	// Create a new package directory after the watcher started.
	sub := filepath.Join(dir, "handlers")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	// Drain the callback for the directory creation itself.
	select {
	case <-callbackFired:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for mkdir callback")
	}

	// A file inside the new directory must now be seen.
	if err := os.WriteFile(filepath.Join(sub, "admin.py"), []byte("# code"), 0o644); err != nil {
		t.Fatalf("write admin.py: %v", err)
	}

	select {
	case changed := <-callbackFired:
		want := filepath.Join("handlers", "admin.py")
		if !slices.Contains(changed, want) {
			t.Errorf("expected %q in changed set, got %v", want, changed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback on file in new directory")
	}

	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("Run() error: %v", err)
	}
}
