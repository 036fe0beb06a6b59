package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfigFile(t, `
mount:
  path: /mnt/test
remote:
  type: memory
cache:
  type: memory
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Logging.Level != "INFO" {
		t.Errorf("default level = %q, want INFO", cfg.Logging.Level)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("default output = %q, want stdout", cfg.Logging.Output)
	}
	if cfg.Hydration.OperationTimeout != 30*time.Second {
		t.Errorf("default operation_timeout = %v", cfg.Hydration.OperationTimeout)
	}
	if cfg.Hydration.RetryAttempts != 3 {
		t.Errorf("default retry_attempts = %d", cfg.Hydration.RetryAttempts)
	}
	if cfg.Metrics.Listen != "127.0.0.1:9657" {
		t.Errorf("default metrics listen = %q", cfg.Metrics.Listen)
	}
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfigFile(t, `
logging:
  level: debug
  output: stderr
mount:
  path: /mnt/data
  case_insensitive: true
remote:
  type: s3
  requests_per_second: 50
  s3:
    region: eu-west-1
    bucket: archive
    key_prefix: snapshots/
cache:
  type: badger
  badger:
    dir: /var/cache/razmount
hydration:
  operation_timeout: 10s
  retry_attempts: 5
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("level = %q, want DEBUG (normalized)", cfg.Logging.Level)
	}
	if !cfg.Mount.CaseInsensitive {
		t.Error("case_insensitive not loaded")
	}
	if cfg.Remote.S3["bucket"] != "archive" {
		t.Errorf("bucket = %v", cfg.Remote.S3["bucket"])
	}
	if cfg.Remote.RequestsPerSecond != 50 {
		t.Errorf("requests_per_second = %d", cfg.Remote.RequestsPerSecond)
	}
	if cfg.Remote.Burst != 50 {
		t.Errorf("burst should default to requests_per_second, got %d", cfg.Remote.Burst)
	}
	if cfg.Cache.Badger["dir"] != "/var/cache/razmount" {
		t.Errorf("badger dir = %v", cfg.Cache.Badger["dir"])
	}
	if cfg.Hydration.OperationTimeout != 10*time.Second {
		t.Errorf("operation_timeout = %v", cfg.Hydration.OperationTimeout)
	}
	if cfg.Hydration.RetryAttempts != 5 {
		t.Errorf("retry_attempts = %d", cfg.Hydration.RetryAttempts)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfigFile(t, `
logging:
  level: info
mount:
  path: /mnt/test
remote:
  type: memory
cache:
  type: memory
`)

	t.Setenv("RAZMOUNT_LOGGING_LEVEL", "ERROR")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Logging.Level != "ERROR" {
		t.Errorf("env override ignored: level = %q", cfg.Logging.Level)
	}
}

func TestGetDefaultConfigPath(t *testing.T) {
	path := GetDefaultConfigPath()

	if !filepath.IsAbs(path) {
		t.Errorf("expected absolute path, got %q", path)
	}
	if filepath.Base(path) != "config.yaml" {
		t.Errorf("expected filename 'config.yaml', got %q", filepath.Base(path))
	}
}

func TestGetConfigDir(t *testing.T) {
	dir := GetConfigDir()

	if filepath.Base(dir) != "razmount" {
		t.Errorf("expected directory name 'razmount', got %q", filepath.Base(dir))
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "mount: [unclosed")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}
