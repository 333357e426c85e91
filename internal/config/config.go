// Package config provides Viper-based configuration for taskctl.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config is the complete taskctl configuration, assembled from the config
// file, TASKCTL_* environment variables and command line flags.
type Config struct {
	AppName string        `mapstructure:"app_name"`
	Server  ServerConfig  `mapstructure:"server"`
	Session SessionConfig `mapstructure:"session"`
	Logging LoggingConfig `mapstructure:"logging"`
	Output  OutputConfig  `mapstructure:"output"`
}

// ServerConfig points the client at the backend.
type ServerConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SessionConfig controls where credentials are persisted.
type SessionConfig struct {
	CredentialsFile string `mapstructure:"credentials_file"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Colors bool `mapstructure:"colors"`
}

// Load reads configuration from cfgFile (or the default search paths when
// empty) and the environment. A missing config file is not an error; the
// defaults describe a local backend.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".taskctl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/taskctl")
	}

	v.SetEnvPrefix("TASKCTL")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "[config.Load] ReadInConfig")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "[config.Load] Unmarshal")
	}
	if err := validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "[config.Load] validate")
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "taskctl")
	v.SetDefault("server.base_url", "http://localhost:8000")
	v.SetDefault("server.timeout", 30*time.Second)
	v.SetDefault("session.credentials_file", defaultCredentialsFile())
	v.SetDefault("logging.level", "info")
	v.SetDefault("output.colors", true)
}

// defaultCredentialsFile places the session under the user's config
// directory, falling back to the working directory when it is unknown.
func defaultCredentialsFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".taskctl-credentials.json"
	}
	return filepath.Join(dir, "taskctl", "credentials.json")
}

func validate(cfg *Config) error {
	if cfg.Server.BaseURL == "" {
		return errors.New("server.base_url is required")
	}
	if cfg.Session.CredentialsFile == "" {
		return errors.New("session.credentials_file is required")
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return errors.Errorf("invalid logging level %q (must be debug, info, warn, or error)", cfg.Logging.Level)
	}
	return nil
}
