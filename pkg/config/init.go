package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// InitConfig writes a commented sample configuration file to the default
// location and returns its path.
//
// Parameters:
//   - force: Overwrite an existing config file
//
// Returns:
//   - string: Path of the written config file
//   - error: If the file exists (without force) or cannot be written
func InitConfig(force bool) (string, error) {
	configPath := GetDefaultConfigPath()

	if !force {
		if _, err := os.Stat(configPath); err == nil {
			return "", fmt.Errorf("config file already exists at %s (use --force to overwrite)", configPath)
		}
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	sample := renderSampleConfig(GetDefaultConfig())

	// The template is hand-written for the sake of comments; make sure it
	// still parses as YAML before handing it to the user.
	var probe map[string]any
	if err := yaml.Unmarshal(sample, &probe); err != nil {
		return "", fmt.Errorf("generated config is not valid YAML: %w", err)
	}

	if err := os.WriteFile(configPath, sample, 0600); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return configPath, nil
}

// renderSampleConfig produces the commented YAML template from defaults.
func renderSampleConfig(cfg *Config) []byte {
	return []byte(fmt.Sprintf(`# razmount Configuration File
#
# Values can be overridden by RAZMOUNT_* environment variables,
# e.g. RAZMOUNT_LOGGING_LEVEL=DEBUG.

logging:
  # Minimum log level: DEBUG, INFO, WARN, ERROR
  level: %s
  # Log destination: stdout, stderr, or a file path
  output: %s

mount:
  # Directory where the projection is mounted
  path: %s
  # Case-insensitive path comparison (remote spellings are preserved)
  case_insensitive: %t

remote:
  # Remote object store: s3 or memory
  type: %s
  # Remote round-trips per second; 0 disables throttling
  requests_per_second: %d
  s3:
    region: us-east-1
    bucket: my-bucket
    # Optional key prefix; the mount projects only keys below it
    key_prefix: ""
    # Custom endpoint for S3-compatible stores (MinIO, Localstack)
    endpoint: ""
    # Leave credentials empty to use the default AWS credential chain
    access_key_id: ""
    secret_access_key: ""

cache:
  # Hydrated content store: memory or badger
  type: %s
  badger:
    # Database directory; empty uses a temporary directory removed on exit
    dir: ""

hydration:
  # Upper bound on a single projection callback
  operation_timeout: %s
  # Total attempts against a transiently unavailable remote
  retry_attempts: %d
  retry_backoff: %s
  max_retry_backoff: %s

metrics:
  enabled: %t
  listen: %s
  path: %s
`,
		cfg.Logging.Level,
		cfg.Logging.Output,
		cfg.Mount.Path,
		cfg.Mount.CaseInsensitive,
		cfg.Remote.Type,
		cfg.Remote.RequestsPerSecond,
		cfg.Cache.Type,
		cfg.Hydration.OperationTimeout,
		cfg.Hydration.RetryAttempts,
		cfg.Hydration.RetryBackoff,
		cfg.Hydration.MaxRetryBackoff,
		cfg.Metrics.Enabled,
		cfg.Metrics.Listen,
		cfg.Metrics.Path,
	))
}
