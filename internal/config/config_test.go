package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"logsynth/internal/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Defaults.Rate != 10 || cfg.Defaults.Format != "plain" {
		t.Errorf("expected built-in defaults, got %+v", cfg.Defaults)
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
defaults:
  rate: 250
  output: /var/log/synthetic.log
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Defaults.Rate != 250 {
		t.Errorf("expected rate 250, got %v", cfg.Defaults.Rate)
	}
	if cfg.Defaults.Format != "plain" {
		t.Errorf("unset keys keep their default, got format %q", cfg.Defaults.Format)
	}
	if cfg.Defaults.Output != "/var/log/synthetic.log" {
		t.Errorf("expected output path, got %q", cfg.Defaults.Output)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "defaults: [not, a, mapping"))
	if err == nil || !strings.Contains(err.Error(), "parsing config file") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestLoad_EnvironmentWins(t *testing.T) {
	t.Setenv("LOGSYNTH_RATE", "42.5")
	t.Setenv("LOGSYNTH_FORMAT", "json")

	cfg, err := Load(writeConfig(t, "defaults:\n  rate: 5\n  format: logfmt\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Defaults.Rate != 42.5 {
		t.Errorf("expected env rate 42.5, got %v", cfg.Defaults.Rate)
	}
	if cfg.Defaults.Format != "json" {
		t.Errorf("expected env format json, got %q", cfg.Defaults.Format)
	}
}

func TestLoad_BadEnvironmentValue(t *testing.T) {
	t.Setenv("LOGSYNTH_RATE", "fast")

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Defaults
		ok   bool
	}{
		{"defaults", Default().Defaults, true},
		{"zero rate", Defaults{Rate: 0, Format: "plain"}, false},
		{"negative rate", Defaults{Rate: -3, Format: "plain"}, false},
		{"rate below minimum", Defaults{Rate: 1e-12, Format: "plain"}, false},
		{"unknown format", Defaults{Rate: 1, Format: "xml"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&Config{Defaults: tt.cfg}).Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, core.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestPath_UsesXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := Path(); got != filepath.Join("/tmp/xdg", "logsynth", "config.yaml") {
		t.Errorf("Path() = %q", got)
	}
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	created, err := Init(path)
	if err != nil || !created {
		t.Fatalf("Init() = %v, %v; want true, nil", created, err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("round trip changed config: %+v", cfg)
	}

	if err := Save(path, &Config{Defaults: Defaults{Rate: 99, Format: "json"}}); err != nil {
		t.Fatal(err)
	}
	created, err = Init(path)
	if err != nil || created {
		t.Errorf("Init() on existing file = %v, %v; want false, nil", created, err)
	}
	cfg, _ = LoadConfig(path)
	if cfg.Defaults.Rate != 99 {
		t.Errorf("Init must not overwrite, rate = %v", cfg.Defaults.Rate)
	}
}
