// Package config handles configuration for the content tools.
package config

// Config holds all tool settings.
type Config struct {
	Data    DataConfig    `yaml:"data"`
	Lint    LintConfig    `yaml:"lint"`
	Audio   AudioConfig   `yaml:"audio"`
	Logging LoggingConfig `yaml:"logging"`
}

// DataConfig holds the locations of the game data files.
type DataConfig struct {
	Root           string `yaml:"root"`            // game data root directory
	ShaderDir      string `yaml:"shader_dir"`      // shader descriptors, relative to root
	SoundMap       string `yaml:"sound_map"`       // sound map file, relative to root
	EditorSettings string `yaml:"editor_settings"` // editor preferences file
}

// LintConfig holds datalint behavior settings.
type LintConfig struct {
	MaxSuggestions  int      `yaml:"max_suggestions"`  // "did you mean" entries per miss
	SoundExtensions []string `yaml:"sound_extensions"` // plausible sound file extensions
}

// AudioConfig holds playback settings for soundprobe.
type AudioConfig struct {
	SampleRate   int     `yaml:"sample_rate"`
	BufferMillis int     `yaml:"buffer_millis"`
	Volume       float64 `yaml:"volume"` // 0.0 to 1.0
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Root:           "data",
			ShaderDir:      "shaders",
			SoundMap:       "sounds/sound_map.ron",
			EditorSettings: "settings.ron",
		},
		Lint: LintConfig{
			MaxSuggestions:  3,
			SoundExtensions: []string{".ogg", ".wav"},
		},
		Audio: AudioConfig{
			SampleRate:   44100,
			BufferMillis: 100,
			Volume:       0.8,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
