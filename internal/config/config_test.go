package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"DrawDefines", cfg.DrawDefines, true},
		{"DrawUses", cfg.DrawUses, true},
		{"Root", cfg.Root, ""},
		{"ColorByFile", cfg.ColorByFile, false},
		{"Annotate", cfg.Annotate, false},
		{"Prune", cfg.Prune, false},
		{"LogLevel", cfg.LogLevel, "info"},
		{"LogJSON", cfg.LogJSON, false},
		{"NoCache", cfg.NoCache, false},
		{"CacheDir", cfg.CacheDir, ".gopyan/cache"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("DefaultConfig().%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *Config
		wantErr     bool
		errContains string
	}{
		{
			name: "valid default config",
			cfg:  DefaultConfig(),
		},
		{
			name: "invalid log level",
			cfg: func() *Config {
				c := DefaultConfig()
				c.LogLevel = "verbose"
				return c
			}(),
			wantErr:     true,
			errContains: "log_level",
		},
		{
			name: "empty cache dir",
			cfg: func() *Config {
				c := DefaultConfig()
				c.CacheDir = ""
				return c
			}(),
			wantErr:     true,
			errContains: "cache_dir",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := "draw_defines: false\nannotate: true\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.DrawDefines {
		t.Errorf("expected DrawDefines=false from file")
	}
	if !cfg.Annotate {
		t.Errorf("expected Annotate=true from file")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected LogLevel=debug, got %s", cfg.LogLevel)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("GOPYAN_ANNOTATE", "true")
	t.Setenv("GOPYAN_ROOT", "/tmp/proj")

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)

	if !cfg.Annotate {
		t.Errorf("expected env override to set Annotate=true")
	}
	if cfg.Root != "/tmp/proj" {
		t.Errorf("expected env override to set Root, got %q", cfg.Root)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Annotate = true
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if !loaded.Annotate {
		t.Errorf("expected saved Annotate=true to round-trip")
	}
}
