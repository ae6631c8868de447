// Package config handles the XDG configuration directory, file paths and
// client settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// AppName is the application directory name.
	AppName = "taskcli"

	// SettingsFile is the optional settings filename.
	SettingsFile = "config.yaml"

	// TokenFile is the stored session token filename.
	TokenFile = "token.json"

	// EnvPrefix prefixes environment overrides, e.g. TASKCLI_BASE_URL.
	EnvPrefix = "TASKCLI"

	// DefaultBaseURL is the backend API root.
	DefaultBaseURL = "http://localhost:8080/api"

	// DefaultTimeout is the fixed per-request timeout.
	DefaultTimeout = 10 * time.Second
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// BaseURL is the backend API root, without a trailing slash.
	BaseURL string

	// Timeout bounds every HTTP request.
	Timeout time.Duration

	// Output selects the rendering of listings: text, json or yaml.
	Output string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/taskcli or $HOME/.config/taskcli.
// Settings are read from config.yaml in that directory, then from
// TASKCLI_* environment variables.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir, Output: "text"}
	if err := cfg.load(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) load() error {
	v := viper.New()
	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	path := c.SettingsPath()
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("invalid %s: %w", SettingsFile, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read %s: %w", SettingsFile, err)
	}

	c.BaseURL = strings.TrimRight(v.GetString("base_url"), "/")
	if c.BaseURL == "" {
		return fmt.Errorf("base_url must not be empty")
	}
	c.Timeout = v.GetDuration("timeout")
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", v.GetString("timeout"))
	}
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// SettingsPath returns the path to the optional settings file.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFile)
}

// TokenPath returns the path to the stored session token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}
