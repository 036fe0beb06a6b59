package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete razmount configuration.
//
// This structure captures all configurable aspects of a mount including:
//   - Logging configuration
//   - Mount point and path comparison policy
//   - Remote object store selection and store-specific configuration
//   - Local hydrated-content cache selection
//   - Hydration engine tunables (timeouts, retry policy, throttling)
//   - Metrics exposition
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (RAZMOUNT_*)
//  3. Configuration file (YAML)
//  4. Default values (lowest priority)
//
// Store Configuration Pattern:
// Each remote and cache backend defines its own option keys. The Config
// struct contains type-specific sections (e.g., remote.s3) and only the
// section matching the selected type is used.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging"`

	// Mount describes the local mount point
	Mount MountConfig `mapstructure:"mount"`

	// Remote specifies the remote object store type and its configuration
	Remote RemoteConfig `mapstructure:"remote"`

	// Cache specifies where hydrated byte ranges are kept locally
	Cache CacheConfig `mapstructure:"cache"`

	// Hydration contains hydration engine tunables
	Hydration HydrationConfig `mapstructure:"hydration"`

	// Metrics controls the Prometheus exposition endpoint
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required"`
}

// MountConfig describes the local mount point.
type MountConfig struct {
	// Path is the directory where the projection is mounted
	Path string `mapstructure:"path" validate:"required"`

	// CaseInsensitive selects case-insensitive path comparison for the
	// lifetime of the mount. Remote name spellings are preserved either way.
	CaseInsensitive bool `mapstructure:"case_insensitive"`
}

// RemoteConfig specifies the remote object store.
//
// The Type field determines which client implementation is used.
// Only the corresponding type-specific configuration section is used.
type RemoteConfig struct {
	// Type specifies which remote store implementation to use
	// Valid values: s3, memory
	Type string `mapstructure:"type" validate:"required,oneof=s3 memory"`

	// S3 contains S3-specific configuration
	// Only used when Type = "s3"
	S3 map[string]any `mapstructure:"s3"`

	// RequestsPerSecond throttles remote round-trips. 0 disables throttling.
	RequestsPerSecond uint `mapstructure:"requests_per_second"`

	// Burst is the throttler burst allowance. Only used when
	// RequestsPerSecond is non-zero.
	Burst uint `mapstructure:"burst"`
}

// CacheConfig specifies the local hydrated-content cache.
//
// Hydrated content never survives a remount regardless of backend; the
// badger backend spills to disk so large working sets do not live in memory.
type CacheConfig struct {
	// Type specifies which cache backend to use
	// Valid values: memory, badger
	Type string `mapstructure:"type" validate:"required,oneof=memory badger"`

	// Badger contains BadgerDB-specific configuration
	// Only used when Type = "badger"
	Badger map[string]any `mapstructure:"badger"`
}

// HydrationConfig contains hydration engine tunables.
type HydrationConfig struct {
	// OperationTimeout bounds each projection callback end to end
	OperationTimeout time.Duration `mapstructure:"operation_timeout" validate:"required,gt=0"`

	// RetryAttempts is the total attempt count for transient remote failures
	RetryAttempts int `mapstructure:"retry_attempts" validate:"gte=1"`

	// RetryBackoff is the initial retry delay, doubled per attempt
	RetryBackoff time.Duration `mapstructure:"retry_backoff" validate:"gt=0"`

	// MaxRetryBackoff caps the per-attempt retry delay
	MaxRetryBackoff time.Duration `mapstructure:"max_retry_backoff" validate:"gt=0"`
}

// MetricsConfig controls Prometheus metrics exposition.
type MetricsConfig struct {
	// Enabled turns the metrics endpoint on
	Enabled bool `mapstructure:"enabled"`

	// Listen is the address the metrics server binds to
	Listen string `mapstructure:"listen"`

	// Path is the HTTP path metrics are served on
	Path string `mapstructure:"path"`
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (RAZMOUNT_*)
//  2. Configuration file
//  3. Default values
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: Configuration loading or validation error
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Environment variables use the RAZMOUNT_ prefix and underscores.
	// Example: RAZMOUNT_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("RAZMOUNT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default location: $XDG_CONFIG_HOME/razmount/config.yaml
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		// A missing config file is acceptable; defaults apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to current
// directory (.) if home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "razmount")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "razmount")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// ConfigExists checks if a config file exists at the default location.
func ConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path (exposed for the
// init command).
func GetConfigDir() string {
	return getConfigDir()
}
