package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "full config",
			content: `state_dir: /srv/terraform
log_level: debug
format: yaml
provider: provider["registry.example.com/fork/ansible"]`,
			check: func(t *testing.T, cfg *Config) {
				if cfg.StateDir != "/srv/terraform" {
					t.Errorf("Expected state_dir=/srv/terraform, got %s", cfg.StateDir)
				}
				if cfg.LogLevel != "debug" {
					t.Errorf("Expected log_level=debug, got %s", cfg.LogLevel)
				}
				if cfg.Format != "yaml" {
					t.Errorf("Expected format=yaml, got %s", cfg.Format)
				}
				if cfg.Provider == "" {
					t.Error("Expected provider override to be set")
				}
			},
		},
		{
			name:    "partial config keeps defaults",
			content: `log_level: warn`,
			check: func(t *testing.T, cfg *Config) {
				if cfg.LogLevel != "warn" {
					t.Errorf("Expected log_level=warn, got %s", cfg.LogLevel)
				}
				if cfg.StateDir != "." {
					t.Errorf("Expected default state_dir, got %s", cfg.StateDir)
				}
				if cfg.Format != "json" {
					t.Errorf("Expected default format, got %s", cfg.Format)
				}
			},
		},
		{
			name:    "invalid yaml",
			content: `state_dir: [`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "tfinv.yml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}

			cfg, err := Load(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("Expected defaults for missing file, got error %v", err)
	}
	if cfg.StateDir != "." || cfg.LogLevel != "info" || cfg.Format != "json" {
		t.Errorf("Expected default config, got %+v", cfg)
	}
}
