// SPDX-License-Identifier: EPL-2.0

package config

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"gantry-cli/internal/testutil"
)

func TestConfigDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG lookup is linux-specific")
	}

	testXDGPath := "/tmp/test-xdg-config"
	restoreXDG := testutil.MustSetenv(t, "XDG_CONFIG_HOME", testXDGPath)
	defer restoreXDG()

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() returned error: %v", err)
	}

	expected := filepath.Join(testXDGPath, AppName)
	if dir != expected {
		t.Errorf("ConfigDir() = %s, want %s", dir, expected)
	}

	// With XDG_CONFIG_HOME unset, falls back to ~/.config
	restoreXDG()
	testutil.MustUnsetenv(t, "XDG_CONFIG_HOME")

	dir, err = ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() returned error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected = filepath.Join(home, ".config", AppName)
	if dir != expected {
		t.Errorf("ConfigDir() = %s, want %s", dir, expected)
	}
}

func TestConfigDir_Override(t *testing.T) {
	tmpDir := t.TempDir()
	SetConfigDirOverride(tmpDir)
	defer Reset()

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() returned error: %v", err)
	}
	if dir != tmpDir {
		t.Errorf("ConfigDir() = %s, want override %s", dir, tmpDir)
	}
}

func TestEnsureConfigDir(t *testing.T) {
	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, AppName)

	SetConfigDirOverride(configDir)
	defer Reset()

	if err := EnsureConfigDir(); err != nil {
		t.Fatalf("EnsureConfigDir() returned error: %v", err)
	}

	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		t.Errorf("EnsureConfigDir() did not create directory %s", configDir)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, AppName)

	SetConfigDirOverride(configDir)
	defer Reset()

	if err := CreateDefaultConfig(); err != nil {
		t.Fatalf("CreateDefaultConfig() returned error: %v", err)
	}

	cfgPath := filepath.Join(configDir, ConfigFileName+"."+ConfigFileExt)
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		t.Fatalf("failed to read generated config: %v", err)
	}

	content := string(data)
	if !strings.Contains(content, `engine: "auto"`) {
		t.Errorf("generated config missing default engine, got:\n%s", content)
	}

	// Idempotent: a second call must not clobber user edits
	if err := os.WriteFile(cfgPath, []byte(`engine: "docker"`+"\n"), 0o644); err != nil {
		t.Fatalf("failed to modify config: %v", err)
	}
	if err := CreateDefaultConfig(); err != nil {
		t.Fatalf("CreateDefaultConfig() second call returned error: %v", err)
	}
	data, err = os.ReadFile(cfgPath)
	if err != nil {
		t.Fatalf("failed to re-read config: %v", err)
	}
	if !strings.Contains(string(data), `engine: "docker"`) {
		t.Error("CreateDefaultConfig() overwrote an existing config file")
	}
}

func TestLoadAndSave(t *testing.T) {
	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, AppName)

	SetConfigDirOverride(configDir)
	defer Reset()

	cfg := &Config{
		Engine: EngineDocker,
		UI: UIConfig{
			ColorScheme: ColorSchemeDark,
			Verbose:     true,
		},
		Build: BuildConfig{
			Force:      true,
			ContextDir: "/var/tmp/gantry-contexts",
			Retries:    5,
		},
	}

	if err := Save(cfg); err != nil {
		t.Fatalf("Save() returned error: %v", err)
	}

	loaded, _, err := loadWithOptions(context.Background(), LoadOptions{})
	if err != nil {
		t.Fatalf("loadWithOptions() returned error: %v", err)
	}

	if loaded.Engine != EngineDocker {
		t.Errorf("Engine = %s, want docker", loaded.Engine)
	}

	if loaded.UI.ColorScheme != ColorSchemeDark {
		t.Errorf("ColorScheme = %s, want dark", loaded.UI.ColorScheme)
	}

	if !loaded.UI.Verbose {
		t.Error("Verbose = false, want true")
	}

	if !loaded.Build.Force {
		t.Error("Build.Force = false, want true")
	}

	if loaded.Build.ContextDir != "/var/tmp/gantry-contexts" {
		t.Errorf("Build.ContextDir = %q, want /var/tmp/gantry-contexts", loaded.Build.ContextDir)
	}

	if loaded.Build.Retries != 5 {
		t.Errorf("Build.Retries = %d, want 5", loaded.Build.Retries)
	}
}

func TestLoad_ReturnsDefaultsWhenNoConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, AppName)

	SetConfigDirOverride(configDir)
	defer Reset()

	cfg, resolvedPath, err := loadWithOptions(context.Background(), LoadOptions{})
	if err != nil {
		t.Fatalf("loadWithOptions() returned error: %v", err)
	}

	if resolvedPath != "" {
		t.Errorf("resolved path = %q, want empty when no config file exists", resolvedPath)
	}

	defaults := DefaultConfig()
	if cfg.Engine != defaults.Engine {
		t.Errorf("Engine = %s, want %s", cfg.Engine, defaults.Engine)
	}
	if cfg.Build.Retries != defaults.Build.Retries {
		t.Errorf("Build.Retries = %d, want %d", cfg.Build.Retries, defaults.Build.Retries)
	}
}

func TestLoad_PartialConfigKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, AppName)
	testutil.MustMkdirAll(t, configDir, 0o755)

	SetConfigDirOverride(configDir)
	defer Reset()

	cfgPath := filepath.Join(configDir, "config.cue")
	content := `engine: "podman"` + "\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, resolvedPath, err := loadWithOptions(context.Background(), LoadOptions{})
	if err != nil {
		t.Fatalf("loadWithOptions() returned error: %v", err)
	}

	if resolvedPath != cfgPath {
		t.Errorf("resolved path = %q, want %q", resolvedPath, cfgPath)
	}

	if cfg.Engine != EnginePodman {
		t.Errorf("Engine = %s, want podman", cfg.Engine)
	}

	// Unset fields keep defaults
	if cfg.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("ColorScheme = %s, want default auto", cfg.UI.ColorScheme)
	}
	if cfg.Build.Retries != 2 {
		t.Errorf("Build.Retries = %d, want default 2", cfg.Build.Retries)
	}
}

func TestLoad_ExplicitConfigFilePath(t *testing.T) {
	tmpDir := t.TempDir()

	cfgPath := filepath.Join(tmpDir, "custom.cue")
	content := `
engine: "docker"
build: retries: 4
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, resolvedPath, err := loadWithOptions(context.Background(), LoadOptions{ConfigFilePath: cfgPath})
	if err != nil {
		t.Fatalf("loadWithOptions() returned error: %v", err)
	}

	if resolvedPath != cfgPath {
		t.Errorf("resolved path = %q, want %q", resolvedPath, cfgPath)
	}
	if cfg.Engine != EngineDocker {
		t.Errorf("Engine = %s, want docker", cfg.Engine)
	}
	if cfg.Build.Retries != 4 {
		t.Errorf("Build.Retries = %d, want 4", cfg.Build.Retries)
	}
}

func TestLoad_ExplicitConfigFileMissing(t *testing.T) {
	tmpDir := t.TempDir()
	missing := filepath.Join(tmpDir, "nope.cue")

	_, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigFilePath: missing})
	if err == nil {
		t.Fatal("loadWithOptions() = nil error, want error for missing explicit config file")
	}
	if !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("error should mention missing config file, got: %v", err)
	}
}

func TestLoad_InvalidCUESyntax(t *testing.T) {
	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, AppName)
	testutil.MustMkdirAll(t, configDir, 0o755)

	SetConfigDirOverride(configDir)
	defer Reset()

	cfgPath := filepath.Join(configDir, "config.cue")
	if err := os.WriteFile(cfgPath, []byte(`engine: "docker`), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	_, _, err := loadWithOptions(context.Background(), LoadOptions{})
	if err == nil {
		t.Fatal("loadWithOptions() = nil error, want syntax error")
	}
}

func TestLoad_SchemaViolation(t *testing.T) {
	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, AppName)
	testutil.MustMkdirAll(t, configDir, 0o755)

	SetConfigDirOverride(configDir)
	defer Reset()

	tests := []struct {
		name    string
		content string
	}{
		{"unknown engine", `engine: "qemu"`},
		{"unknown field", `turbo: true`},
		{"retries out of range", `build: retries: 42`},
		{"wrong type", `ui: verbose: "yes"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfgPath := filepath.Join(configDir, "config.cue")
			if err := os.WriteFile(cfgPath, []byte(tt.content+"\n"), 0o644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			_, _, err := loadWithOptions(context.Background(), LoadOptions{})
			if err == nil {
				t.Fatalf("loadWithOptions() accepted invalid config %q", tt.content)
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, AppName)

	SetConfigDirOverride(configDir)
	defer Reset()

	t.Setenv("GANTRY_ENGINE", "podman")
	t.Setenv("GANTRY_UI_VERBOSE", "true")
	t.Setenv("GANTRY_BUILD_RETRIES", "7")

	cfg, _, err := loadWithOptions(context.Background(), LoadOptions{})
	if err != nil {
		t.Fatalf("loadWithOptions() returned error: %v", err)
	}

	if cfg.Engine != EnginePodman {
		t.Errorf("Engine = %s, want podman from GANTRY_ENGINE", cfg.Engine)
	}
	if !cfg.UI.Verbose {
		t.Error("UI.Verbose = false, want true from GANTRY_UI_VERBOSE")
	}
	if cfg.Build.Retries != 7 {
		t.Errorf("Build.Retries = %d, want 7 from GANTRY_BUILD_RETRIES", cfg.Build.Retries)
	}
}

func TestLoad_EnvOverrideBeatsFile(t *testing.T) {
	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, AppName)
	testutil.MustMkdirAll(t, configDir, 0o755)

	SetConfigDirOverride(configDir)
	defer Reset()

	cfgPath := filepath.Join(configDir, "config.cue")
	if err := os.WriteFile(cfgPath, []byte(`engine: "docker"`+"\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv("GANTRY_ENGINE", "podman")

	cfg, _, err := loadWithOptions(context.Background(), LoadOptions{})
	if err != nil {
		t.Fatalf("loadWithOptions() returned error: %v", err)
	}

	if cfg.Engine != EnginePodman {
		t.Errorf("Engine = %s, want env override podman over file value docker", cfg.Engine)
	}
}

func TestLoad_InvalidEnvOverrideRejected(t *testing.T) {
	tmpDir := t.TempDir()
	configDir := filepath.Join(tmpDir, AppName)

	SetConfigDirOverride(configDir)
	defer Reset()

	t.Setenv("GANTRY_ENGINE", "vmware")

	_, _, err := loadWithOptions(context.Background(), LoadOptions{})
	if err == nil {
		t.Fatal("loadWithOptions() = nil error, want validation error for bad GANTRY_ENGINE")
	}
	if !strings.Contains(err.Error(), "validate configuration") {
		t.Errorf("error should mention validation, got: %v", err)
	}
}

func TestLoad_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := loadWithOptions(ctx, LoadOptions{})
	if err == nil {
		t.Fatal("loadWithOptions() = nil error, want cancellation error")
	}
	if !strings.Contains(err.Error(), "canceled") {
		t.Errorf("error should mention cancellation, got: %v", err)
	}
}

func TestGenerateCUE(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		Engine: EnginePodman,
		UI: UIConfig{
			ColorScheme: ColorSchemeLight,
			Verbose:     true,
		},
		Build: BuildConfig{
			Force:      false,
			ContextDir: "/scratch",
			Retries:    3,
		},
	}

	content := GenerateCUE(cfg)

	for _, want := range []string{
		`engine: "podman"`,
		`color_scheme: "light"`,
		`verbose: true`,
		`force: false`,
		`context_dir: "/scratch"`,
		`retries: 3`,
	} {
		if !strings.Contains(content, want) {
			t.Errorf("GenerateCUE() missing %q in:\n%s", want, content)
		}
	}
}

func TestGenerateCUE_OmitsEmptyContextDir(t *testing.T) {
	t.Parallel()

	content := GenerateCUE(DefaultConfig())
	if strings.Contains(content, "context_dir") {
		t.Errorf("GenerateCUE() should omit empty context_dir, got:\n%s", content)
	}
}

func TestGenerateCUE_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := &Config{
		Engine: EngineDocker,
		UI: UIConfig{
			ColorScheme: ColorSchemeDark,
			Verbose:     true,
		},
		Build: BuildConfig{
			Force:   true,
			Retries: 1,
		},
	}

	cfgPath := filepath.Join(tmpDir, "config.cue")
	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	loaded, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigFilePath: cfgPath})
	if err != nil {
		t.Fatalf("loadWithOptions() on generated config returned error: %v", err)
	}

	if loaded.Engine != cfg.Engine {
		t.Errorf("Engine = %s, want %s", loaded.Engine, cfg.Engine)
	}
	if loaded.UI.ColorScheme != cfg.UI.ColorScheme {
		t.Errorf("ColorScheme = %s, want %s", loaded.UI.ColorScheme, cfg.UI.ColorScheme)
	}
	if loaded.Build.Force != cfg.Build.Force {
		t.Errorf("Build.Force = %v, want %v", loaded.Build.Force, cfg.Build.Force)
	}
	if loaded.Build.Retries != cfg.Build.Retries {
		t.Errorf("Build.Retries = %d, want %d", loaded.Build.Retries, cfg.Build.Retries)
	}
}
