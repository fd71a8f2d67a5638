package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Inspect.Port != DefaultInspectPort {
		t.Errorf("Inspect.Port = %d, want %d", cfg.Inspect.Port, DefaultInspectPort)
	}
	if cfg.Inspect.Host != DefaultInspectHost {
		t.Errorf("Inspect.Host = %q, want %q", cfg.Inspect.Host, DefaultInspectHost)
	}
	if cfg.Metrics.Namespace != DefaultNamespace {
		t.Errorf("Metrics.Namespace = %q, want %q", cfg.Metrics.Namespace, DefaultNamespace)
	}
	if cfg.MaxNotifyRounds != 0 {
		t.Errorf("MaxNotifyRounds = %d, want 0", cfg.MaxNotifyRounds)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	// Test loading non-existent config
	_, err := Load(tmpDir)
	if err == nil {
		t.Error("Expected error for missing config")
	} else if !strings.Contains(err.Error(), "E141") {
		t.Errorf("Expected E141 error, got: %v", err)
	}

	configPath := filepath.Join(tmpDir, ConfigFileName)
	configJSON := `{
  "log_level": "debug",
  "max_notify_rounds": 32,
  "inspect": {
    "port": 8081
  },
  "tracing": {
    "enabled": true,
    "min_duration": "2ms"
  }
}
`
	if err := os.WriteFile(configPath, []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.MaxNotifyRounds != 32 {
		t.Errorf("MaxNotifyRounds = %d, want 32", cfg.MaxNotifyRounds)
	}
	if cfg.Inspect.Port != 8081 {
		t.Errorf("Inspect.Port = %d, want 8081", cfg.Inspect.Port)
	}
	if cfg.Inspect.Host != DefaultInspectHost {
		t.Errorf("Inspect.Host = %q, want default %q", cfg.Inspect.Host, DefaultInspectHost)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should keep its default")
	}
	if !cfg.Tracing.Enabled {
		t.Error("Tracing.Enabled should be true")
	}
	if d, err := cfg.TracingMinDuration(); err != nil || d != 2*time.Millisecond {
		t.Errorf("TracingMinDuration = %v, %v; want 2ms", d, err)
	}
	if cfg.Runtime().MaxNotifyRounds != 32 {
		t.Errorf("Runtime().MaxNotifyRounds = %d, want 32", cfg.Runtime().MaxNotifyRounds)
	}
	if cfg.Path() != configPath {
		t.Errorf("Path() = %q, want %q", cfg.Path(), configPath)
	}
}

func TestLoadFile_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	if err := os.WriteFile(configPath, []byte("not valid json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid JSON")
	}
	if !strings.Contains(err.Error(), "E120") {
		t.Errorf("Expected E120 error, got: %v", err)
	}
}

func TestLoadOrDefault(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := LoadOrDefault(tmpDir)
	if err != nil {
		t.Fatalf("LoadOrDefault error: %v", err)
	}
	if cfg.Path() != "" {
		t.Errorf("default config should have no path, got %q", cfg.Path())
	}
	if cfg.Inspect.Port != DefaultInspectPort {
		t.Errorf("Inspect.Port = %d, want %d", cfg.Inspect.Port, DefaultInspectPort)
	}
}

func TestSave(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	cfg := New()
	cfg.Inspect.Port = 9000
	cfg.LogLevel = "warn"

	// Save should fail without configPath set
	if err := cfg.Save(); err == nil {
		t.Error("Expected error when saving without path")
	}

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("SaveTo error: %v", err)
	}
	if cfg.Dir() != tmpDir {
		t.Errorf("Dir() = %q, want %q", cfg.Dir(), tmpDir)
	}

	loaded, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if loaded.Inspect.Port != 9000 {
		t.Errorf("Inspect.Port = %d, want 9000", loaded.Inspect.Port)
	}
	if loaded.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", loaded.LogLevel)
	}

	loaded.MaxNotifyRounds = 8
	if err := loaded.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	again, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if again.MaxNotifyRounds != 8 {
		t.Errorf("MaxNotifyRounds = %d, want 8", again.MaxNotifyRounds)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"port too large", func(c *Config) { c.Inspect.Port = 70000 }, true},
		{"negative port", func(c *Config) { c.Inspect.Port = -1 }, true},
		{"unknown level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"upper-case level", func(c *Config) { c.LogLevel = "DEBUG" }, false},
		{"unknown format", func(c *Config) { c.LogFormat = "xml" }, true},
		{"negative rounds", func(c *Config) { c.MaxNotifyRounds = -1 }, true},
		{"bad duration", func(c *Config) { c.Tracing.MinDuration = "soon" }, true},
		{"good duration", func(c *Config) { c.Tracing.MinDuration = "500us" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), "E122") {
				t.Errorf("expected E122, got %v", err)
			}
		})
	}
}

func TestInspectAddress(t *testing.T) {
	cfg := New()
	if got := cfg.InspectAddress(); got != "localhost:7070" {
		t.Errorf("InspectAddress() = %q, want localhost:7070", got)
	}
}

func TestFindProjectRoot(t *testing.T) {
	tmpDir := t.TempDir()
	nested := filepath.Join(tmpDir, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	if _, err := FindProjectRoot(nested); err == nil {
		t.Error("Expected error when no config exists")
	}

	if err := New().SaveTo(filepath.Join(tmpDir, ConfigFileName)); err != nil {
		t.Fatal(err)
	}

	root, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectRoot error: %v", err)
	}
	want, _ := filepath.Abs(tmpDir)
	if root != want {
		t.Errorf("FindProjectRoot = %q, want %q", root, want)
	}
}
