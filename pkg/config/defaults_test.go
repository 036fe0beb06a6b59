package config

import (
	"testing"
	"time"
)

func TestApplyDefaults_EmptyConfig(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("level = %q", cfg.Logging.Level)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("output = %q", cfg.Logging.Output)
	}
	if cfg.Remote.Type != "s3" {
		t.Errorf("remote type = %q", cfg.Remote.Type)
	}
	if cfg.Remote.S3 == nil {
		t.Error("s3 options map not initialized")
	}
	if cfg.Cache.Type != "badger" {
		t.Errorf("cache type = %q", cfg.Cache.Type)
	}
	if cfg.Hydration.OperationTimeout != 30*time.Second {
		t.Errorf("operation_timeout = %v", cfg.Hydration.OperationTimeout)
	}
	if cfg.Hydration.MaxRetryBackoff != 2*time.Second {
		t.Errorf("max_retry_backoff = %v", cfg.Hydration.MaxRetryBackoff)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Logging:   LoggingConfig{Level: "warn", Output: "/var/log/razmount.log"},
		Hydration: HydrationConfig{RetryAttempts: 7},
	}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "WARN" {
		t.Errorf("level = %q, want WARN (normalized, not replaced)", cfg.Logging.Level)
	}
	if cfg.Logging.Output != "/var/log/razmount.log" {
		t.Errorf("output = %q", cfg.Logging.Output)
	}
	if cfg.Hydration.RetryAttempts != 7 {
		t.Errorf("retry_attempts = %d", cfg.Hydration.RetryAttempts)
	}
}

func TestGetDefaultConfig_Valid(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Remote.Type = "memory"
	if err := Validate(cfg); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if !cfg.Mount.CaseInsensitive {
		t.Error("default mount should be case-insensitive")
	}
}

func TestApplyDefaults_BurstFollowsRate(t *testing.T) {
	cfg := &Config{Remote: RemoteConfig{RequestsPerSecond: 25}}
	ApplyDefaults(cfg)
	if cfg.Remote.Burst != 25 {
		t.Errorf("burst = %d, want 25", cfg.Remote.Burst)
	}
}
