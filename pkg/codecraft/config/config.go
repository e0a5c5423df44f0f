// Package config loads application configuration from file and
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// Defaults.
const (
	DefaultBaseURL    = "http://localhost:4000"
	DefaultDebounceMS = 1000
)

// APIConfig configures the remote project store client.
type APIConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	TokenPath string `mapstructure:"token_path"` // Empty means use the default XDG path
}

// CacheConfig configures the local project cache.
type CacheConfig struct {
	Path string `mapstructure:"path"` // Empty means use the default XDG path
}

// SyncConfig configures the debounced remote push.
type SyncConfig struct {
	DebounceMS int `mapstructure:"debounce_ms"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Components map[string]string `mapstructure:"components"`
}

// Config represents the application configuration.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Sync    SyncConfig    `mapstructure:"sync"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/codecraft/config.yaml
//   - $HOME/.config/codecraft/config.yaml
//
// Environment variables are prefixed with CODECRAFT_
// (e.g., CODECRAFT_API_BASE_URL).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, "codecraft"))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", "codecraft"))

	v.SetEnvPrefix("CODECRAFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("api.base_url", DefaultBaseURL)
	v.SetDefault("api.token_path", "")
	v.SetDefault("cache.path", "")
	v.SetDefault("sync.debounce_ms", DefaultDebounceMS)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "") // Empty means use DefaultLogPath
	v.SetDefault("logging.components", map[string]string{
		"workspace": "info",
		"pusher":    "info",
		"remote":    "warn",
	})

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "codecraft"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "codecraft"), nil
}

// DataDir returns $XDG_DATA_HOME/codecraft/ for the cache and token.
func DataDir() string {
	return filepath.Join(xdg.DataHome, "codecraft")
}

// StateDir returns $XDG_STATE_HOME/codecraft/ for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "codecraft")
}

// DefaultLogPath returns the default log file path.
func DefaultLogPath() string {
	return filepath.Join(StateDir(), "codecraft.log")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	if err := os.MkdirAll(DataDir(), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	return nil
}

// EnsureStateDir creates the state directory if it doesn't exist.
func EnsureStateDir() error {
	if err := os.MkdirAll(StateDir(), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	return nil
}

// WriteDefault writes a default config file if none exists.
// Returns nil if a config file already exists.
func WriteDefault() error {
	configDir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	defaultConfig := fmt.Sprintf(`# CodeCraft Configuration

# Remote project store
api:
  base_url: %s
  # Bearer token location (empty means use default: $XDG_DATA_HOME/codecraft/token)
  token_path: ""

# Local project cache
cache:
  # Badger DB directory (empty means use default: $XDG_DATA_HOME/codecraft/cache)
  path: ""

# Remote push scheduling
sync:
  # Delay between the last edit in a burst and the remote push
  debounce_ms: %d

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: info
  # Log file path (empty means use default: $XDG_STATE_HOME/codecraft/codecraft.log)
  path: ""
  # Per-component log levels
  components:
    workspace: info
    pusher: info
    remote: warn
`, DefaultBaseURL, DefaultDebounceMS)

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}

	return nil
}
