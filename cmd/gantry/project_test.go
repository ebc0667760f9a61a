// SPDX-License-Identifier: EPL-2.0

package cmd

import (
	"errors"
	"reflect"
	"testing"

	"gantry-cli/internal/config"
	"gantry-cli/internal/launch"
)

func TestParseEnvVarFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pairs   []string
		want    map[string]string
		wantErr bool
	}{
		{
			name:  "nil input returns nil map",
			pairs: nil,
			want:  nil,
		},
		{
			name:  "single pair",
			pairs: []string{"BOT_TOKEN=secret"},
			want:  map[string]string{"BOT_TOKEN": "secret"},
		},
		{
			name:  "value may contain equals signs",
			pairs: []string{"DSN=postgres://u:p@host/db?sslmode=disable"},
			want:  map[string]string{"DSN": "postgres://u:p@host/db?sslmode=disable"},
		},
		{
			name:  "empty value is allowed",
			pairs: []string{"DEBUG="},
			want:  map[string]string{"DEBUG": ""},
		},
		{
			name:  "last occurrence of a key wins",
			pairs: []string{"MODE=dev", "MODE=prod"},
			want:  map[string]string{"MODE": "prod"},
		},
		{
			name:    "missing separator is rejected",
			pairs:   []string{"NOVALUE"},
			wantErr: true,
		},
		{
			name:    "empty key is rejected",
			pairs:   []string{"=value"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseEnvVarFlags(tt.pairs)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseEnvVarFlags(%v) = nil error, want error", tt.pairs)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseEnvVarFlags(%v) error: %v", tt.pairs, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseEnvVarFlags(%v) = %v, want %v", tt.pairs, got, tt.want)
			}
		})
	}
}

func TestFinishRun(t *testing.T) {
	// Not parallel: finishRun renders guidance cards through the loaded
	// configuration.

	t.Run("clean exit is no error", func(t *testing.T) {
		if err := finishRun(&launch.Result{ExitCode: 0}); err != nil {
			t.Errorf("finishRun(exit 0) = %v, want nil", err)
		}
	})

	t.Run("application exit status is propagated exactly", func(t *testing.T) {
		err := finishRun(&launch.Result{ExitCode: 3})

		var exitErr *ExitError
		if !errors.As(err, &exitErr) {
			t.Fatalf("finishRun(exit 3) = %T, want *ExitError", err)
		}
		if int(exitErr.Code) != 3 {
			t.Errorf("ExitError.Code = %d, want 3", int(exitErr.Code))
		}
		if exitErr.Err != nil {
			t.Errorf("a plain application exit should carry no cause, got %v", exitErr.Err)
		}
	})

	t.Run("infrastructure failure keeps cause and code", func(t *testing.T) {
		cause := errors.New("engine refused the run")
		err := finishRun(&launch.Result{ExitCode: 125, Error: cause})

		var exitErr *ExitError
		if !errors.As(err, &exitErr) {
			t.Fatalf("finishRun(infra error) = %T, want *ExitError", err)
		}
		if int(exitErr.Code) != 125 {
			t.Errorf("ExitError.Code = %d, want 125", int(exitErr.Code))
		}
		if !errors.Is(err, cause) {
			t.Error("errors.Is should reach the infrastructure cause")
		}
	})
}

func TestRenderStyle(t *testing.T) {
	// Not parallel: mutates the package-level loadedCfg.
	orig := loadedCfg
	t.Cleanup(func() { loadedCfg = orig })

	tests := []struct {
		name string
		cfg  *config.Config
		want string
	}{
		{name: "nil config falls back to dark", cfg: nil, want: "dark"},
		{
			name: "light scheme",
			cfg:  &config.Config{UI: config.UIConfig{ColorScheme: config.ColorSchemeLight}},
			want: "light",
		},
		{
			name: "dark scheme",
			cfg:  &config.Config{UI: config.UIConfig{ColorScheme: config.ColorSchemeDark}},
			want: "dark",
		},
		{
			name: "auto detects",
			cfg:  &config.Config{UI: config.UIConfig{ColorScheme: config.ColorSchemeAuto}},
			want: "auto",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loadedCfg = tt.cfg
			if got := renderStyle(); got != tt.want {
				t.Errorf("renderStyle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBaseBuildOptions(t *testing.T) {
	// Not parallel: mutates the package-level loadedCfg.
	orig := loadedCfg
	t.Cleanup(func() { loadedCfg = orig })

	t.Run("nil config yields zero options", func(t *testing.T) {
		loadedCfg = nil

		opts := baseBuildOptions()
		if opts.Force || opts.ContextDir != "" || opts.Retries != 0 {
			t.Errorf("baseBuildOptions() with nil config = %+v, want zero value", opts)
		}
	})

	t.Run("configured values carry over", func(t *testing.T) {
		loadedCfg = &config.Config{
			Build: config.BuildConfig{
				Force:      true,
				ContextDir: "/var/tmp/gantry",
				Retries:    5,
			},
		}

		opts := baseBuildOptions()
		if !opts.Force {
			t.Error("Force should carry over from config")
		}
		if opts.ContextDir != "/var/tmp/gantry" {
			t.Errorf("ContextDir = %q, want %q", opts.ContextDir, "/var/tmp/gantry")
		}
		if opts.Retries != 5 {
			t.Errorf("Retries = %d, want 5", opts.Retries)
		}
	})
}
