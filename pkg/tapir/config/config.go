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

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Components map[string]string `mapstructure:"components"`
}

// Config represents the application configuration.
type Config struct {
	Workers   int           `mapstructure:"workers"`
	ChunkSize string        `mapstructure:"chunk_size"`
	Exclude   []string      `mapstructure:"exclude"`
	Output    string        `mapstructure:"output"`
	Logging   LoggingConfig `mapstructure:"logging"`
}

// Load loads configuration from file and environment variables.
// The config file lives at $XDG_CONFIG_HOME/tapir/config.yaml, falling
// back to ~/.config/tapir/config.yaml per the XDG spec.
//
// Environment variables are prefixed with TAPIR_ (e.g., TAPIR_WORKERS).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(ConfigDir())

	v.SetEnvPrefix("TAPIR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is acceptable; we use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// SetDefaults registers the default values on a viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("chunk_size", DefaultChunkSize)
	v.SetDefault("exclude", DefaultExclusions)
	v.SetDefault("output", DefaultOutputFormat)
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.components", map[string]string{
		"compute":   DefaultLogLevel,
		"verify":    DefaultLogLevel,
		"enumerate": DefaultLogLevel,
	})
}

// ConfigDir returns $XDG_CONFIG_HOME/tapir/, falling back to
// ~/.config/tapir/ when the variable is unset.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, "tapir")
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	if err := os.MkdirAll(ConfigDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return nil
}

// WriteDefault writes a default config file if none exists.
// Returns nil if a config file already exists.
func WriteDefault() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	configPath := filepath.Join(ConfigDir(), "config.yaml")

	if _, err := os.Stat(configPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	defaultConfig := fmt.Sprintf(`# Tapir Checksum Tool Configuration

# Hashing worker pool size (0 = one per CPU core)
workers: %d

# Read buffer size for streaming hashes
chunk_size: %s

# Glob patterns excluded from enumeration
exclude: []

# Verify report format: pretty, plain, json, yaml
output: %s

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: %s
  # Per-component log levels
  components:
    compute: %s
    verify: %s
    enumerate: %s
`, DefaultWorkers, DefaultChunkSize, DefaultOutputFormat,
		DefaultLogLevel, DefaultLogLevel, DefaultLogLevel, DefaultLogLevel)

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}

	return nil
}

// ExpandPath expands ~ in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}
