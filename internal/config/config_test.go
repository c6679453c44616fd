package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test data defaults
	if cfg.Data.Root != "data" {
		t.Errorf("expected data root 'data', got %s", cfg.Data.Root)
	}
	if cfg.Data.ShaderDir != "shaders" {
		t.Errorf("expected shader dir 'shaders', got %s", cfg.Data.ShaderDir)
	}
	if cfg.Data.SoundMap != "sounds/sound_map.ron" {
		t.Errorf("expected sound map 'sounds/sound_map.ron', got %s", cfg.Data.SoundMap)
	}

	// Test lint defaults
	if cfg.Lint.MaxSuggestions != 3 {
		t.Errorf("expected max suggestions 3, got %d", cfg.Lint.MaxSuggestions)
	}
	if len(cfg.Lint.SoundExtensions) != 2 {
		t.Errorf("expected 2 sound extensions, got %d", len(cfg.Lint.SoundExtensions))
	}

	// Test audio defaults
	if cfg.Audio.SampleRate != 44100 {
		t.Errorf("expected sample rate 44100, got %d", cfg.Audio.SampleRate)
	}
	if cfg.Audio.Volume != 0.8 {
		t.Errorf("expected volume 0.8, got %f", cfg.Audio.Volume)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
data:
  root: "/srv/outpost/data"
  shader_dir: "materials/shaders"
  sound_map: "audio/sound_map.ron"
  editor_settings: "editor/settings.ron"

lint:
  max_suggestions: 5
  sound_extensions: [".ogg"]

audio:
  sample_rate: 48000
  buffer_millis: 50
  volume: 0.5

logging:
  level: "debug"
  log_file: "outpost.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Load config
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify values were loaded
	if cfg.Data.Root != "/srv/outpost/data" {
		t.Errorf("expected data root '/srv/outpost/data', got %s", cfg.Data.Root)
	}
	if cfg.Data.ShaderDir != "materials/shaders" {
		t.Errorf("expected shader dir 'materials/shaders', got %s", cfg.Data.ShaderDir)
	}
	if cfg.Data.SoundMap != "audio/sound_map.ron" {
		t.Errorf("expected sound map 'audio/sound_map.ron', got %s", cfg.Data.SoundMap)
	}

	if cfg.Lint.MaxSuggestions != 5 {
		t.Errorf("expected max suggestions 5, got %d", cfg.Lint.MaxSuggestions)
	}
	if len(cfg.Lint.SoundExtensions) != 1 || cfg.Lint.SoundExtensions[0] != ".ogg" {
		t.Errorf("expected sound extensions [.ogg], got %v", cfg.Lint.SoundExtensions)
	}

	if cfg.Audio.SampleRate != 48000 {
		t.Errorf("expected sample rate 48000, got %d", cfg.Audio.SampleRate)
	}
	if cfg.Audio.Volume != 0.5 {
		t.Errorf("expected volume 0.5, got %f", cfg.Audio.Volume)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "outpost.log" {
		t.Errorf("expected log file 'outpost.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	// Create temporary config file with invalid YAML
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
audio:
  sample_rate: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Try to load - should error
	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Just verify it returns a non-empty path
	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	// Verify path is absolute
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	// Save current directory
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	// Create temp directory and change to it
	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	// Create outpost.yaml in current directory
	configPath := filepath.Join(tmpDir, "outpost.yaml")
	if err := os.WriteFile(configPath, []byte("logging:\n  level: debug\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	// Should find it now
	path = findConfigFile()
	if path == "" {
		t.Error("expected to find outpost.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name: "debug flag",
			setup: func() {
				*flagDebug = true
			},
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() {
				*flagDebug = false
			},
		},
		{
			name: "data flag",
			setup: func() {
				*flagData = "/mnt/assets"
			},
			verify: func(cfg *Config) {
				if cfg.Data.Root != "/mnt/assets" {
					t.Errorf("expected data root /mnt/assets, got %s", cfg.Data.Root)
				}
			},
			teardown: func() {
				*flagData = ""
			},
		},
		{
			name: "logfile flag",
			setup: func() {
				*flagLogFile = "tools.log"
			},
			verify: func(cfg *Config) {
				if cfg.Logging.LogFile != "tools.log" {
					t.Errorf("expected log file tools.log, got %s", cfg.Logging.LogFile)
				}
			},
			teardown: func() {
				*flagLogFile = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			tt.setup()
			defer tt.teardown()

			// Apply flags to default config
			cfg := Default()
			applyFlags(cfg)

			// Verify
			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
data:
  root: "file-root"
logging:
  level: "warn"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Set flag to override config file
	*flagConfig = configPath
	*flagData = "flag-root"
	defer func() {
		*flagConfig = ""
		*flagData = ""
	}()

	// Load config
	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Data root should be from flag, not file
	if cfg.Data.Root != "flag-root" {
		t.Errorf("expected data root 'flag-root' from flag, got %s", cfg.Data.Root)
	}

	// Log level should be from file since no flag override
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected log level 'warn' from file, got %s", cfg.Logging.Level)
	}
}
