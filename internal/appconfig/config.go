package appconfig

import (
	"os"
	"path/filepath"

	"rhythm/internal/cue"
	"rhythm/internal/timer"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int           `mapstructure:"config_version" yaml:"config_version"`
	HTTP          HTTPConfig    `mapstructure:"http" yaml:"http"`
	Timer         TimerConfig   `mapstructure:"timer" yaml:"timer"`
	Presets       PresetsConfig `mapstructure:"presets" yaml:"presets"`
	Cues          CuesConfig    `mapstructure:"cues" yaml:"cues"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// Preset backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// HTTPConfig configures the web server.
type HTTPConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// TimerConfig is the workout loaded at startup.
type TimerConfig struct {
	WorkSeconds int      `mapstructure:"work_seconds" yaml:"work_seconds"`
	RestSeconds int      `mapstructure:"rest_seconds" yaml:"rest_seconds"`
	Rounds      int      `mapstructure:"rounds" yaml:"rounds"`
	Exercises   []string `mapstructure:"exercises" yaml:"exercises"`
}

// Configuration converts the startup workout to a clamped timer configuration.
func (c TimerConfig) Configuration() timer.Configuration {
	return timer.Configuration{
		WorkDuration: c.WorkSeconds,
		RestDuration: c.RestSeconds,
		Rounds:       c.Rounds,
	}.Normalize()
}

// PresetsConfig selects where user presets live.
type PresetsConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"`
	Path    string `mapstructure:"path" yaml:"path"`
	UserID  string `mapstructure:"user_id" yaml:"user_id"`
	Watch   bool   `mapstructure:"watch" yaml:"watch"`
}

// CuesConfig controls local audio and speech.
type CuesConfig struct {
	Tones         bool    `mapstructure:"tones" yaml:"tones"`
	Speech        bool    `mapstructure:"speech" yaml:"speech"`
	ToneCommand   string  `mapstructure:"tone_command" yaml:"tone_command"`
	SpeechCommand string  `mapstructure:"speech_command" yaml:"speech_command"`
	SpeechRate    float64 `mapstructure:"speech_rate" yaml:"speech_rate"`
}

// CommandConfig returns the player settings for local playback.
func (c CuesConfig) CommandConfig() cue.CommandConfig {
	return cue.CommandConfig{
		ToneCommand:   c.ToneCommand,
		SpeechCommand: c.SpeechCommand,
		SpeechRate:    c.SpeechRate,
	}
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}
	workout := timer.DefaultConfiguration()
	player := cue.DefaultCommandConfig()
	return Config{
		ConfigVersion: CurrentConfigVersion,
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
		Timer: TimerConfig{
			WorkSeconds: workout.WorkDuration,
			RestSeconds: workout.RestDuration,
			Rounds:      workout.Rounds,
			Exercises:   []string{},
		},
		Presets: PresetsConfig{
			Backend: BackendFile,
			Path:    filepath.Join(home, ".rhythm", "presets.yaml"),
			UserID:  "local",
			Watch:   true,
		},
		Cues: CuesConfig{
			Tones:         true,
			Speech:        true,
			ToneCommand:   player.ToneCommand,
			SpeechCommand: player.SpeechCommand,
			SpeechRate:    player.SpeechRate,
		},
	}, nil
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".rhythm", "config.yaml"), nil
}
