package appconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"rhythm/internal/timer"
)

// Load reads configuration from the provided path. If path is empty, uses
// DefaultConfigPath. A missing file yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("config_version", cfg.ConfigVersion)
	v.SetDefault("http.addr", cfg.HTTP.Addr)
	v.SetDefault("timer.work_seconds", cfg.Timer.WorkSeconds)
	v.SetDefault("timer.rest_seconds", cfg.Timer.RestSeconds)
	v.SetDefault("timer.rounds", cfg.Timer.Rounds)
	v.SetDefault("timer.exercises", cfg.Timer.Exercises)
	v.SetDefault("presets.backend", cfg.Presets.Backend)
	v.SetDefault("presets.path", cfg.Presets.Path)
	v.SetDefault("presets.user_id", cfg.Presets.UserID)
	v.SetDefault("presets.watch", cfg.Presets.Watch)
	v.SetDefault("cues.tones", cfg.Cues.Tones)
	v.SetDefault("cues.speech", cfg.Cues.Speech)
	v.SetDefault("cues.tone_command", cfg.Cues.ToneCommand)
	v.SetDefault("cues.speech_command", cfg.Cues.SpeechCommand)
	v.SetDefault("cues.speech_rate", cfg.Cues.SpeechRate)

	// An explicit config file that does not exist is not a ConfigFileNotFoundError.
	configLoaded := false
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
		configLoaded = true
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}

	if configLoaded {
		if !v.InConfig("config_version") {
			return Config{}, fmt.Errorf("config_version is required; expected %d", CurrentConfigVersion)
		}
		if v.GetInt("config_version") != CurrentConfigVersion {
			return Config{}, fmt.Errorf("unsupported config_version %d; expected %d", v.GetInt("config_version"), CurrentConfigVersion)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	expandConfigEnv(&cfg)
	if err := validate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.Presets.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("unsupported presets.backend %q", cfg.Presets.Backend)
	}
	if strings.TrimSpace(cfg.Presets.Path) == "" {
		return fmt.Errorf("presets.path is required")
	}
	exercises, err := timer.ValidateExercises(cfg.Timer.Exercises)
	if err != nil {
		return fmt.Errorf("timer.exercises: %w", err)
	}
	cfg.Timer.Exercises = exercises
	if cfg.Cues.SpeechRate <= 0 {
		return fmt.Errorf("cues.speech_rate must be positive")
	}
	return nil
}

func expandConfigEnv(cfg *Config) {
	if cfg == nil {
		return
	}
	cfg.Presets.Path = expandEnv(cfg.Presets.Path)
	cfg.Presets.UserID = expandEnv(cfg.Presets.UserID)
	cfg.Cues.ToneCommand = expandEnv(cfg.Cues.ToneCommand)
	cfg.Cues.SpeechCommand = expandEnv(cfg.Cues.SpeechCommand)
}

func expandEnv(value string) string {
	if value == "" {
		return value
	}
	if strings.HasPrefix(value, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			value = filepath.Join(home, value[2:])
		}
	}
	return os.Expand(value, func(key string) string {
		if key == "" {
			return ""
		}
		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		return "$" + key
	})
}

// WriteDefault writes the default config to the target path.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
