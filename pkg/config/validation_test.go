package config

import (
	"strings"
	"testing"
	"time"
)

// validConfig returns a config that passes validation, for tests to break
// one field at a time.
func validConfig() *Config {
	cfg := GetDefaultConfig()
	cfg.Remote.Type = "memory"
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "VERBOSE" },
			wantSub: "Level",
		},
		{
			name:    "missing mount path",
			mutate:  func(c *Config) { c.Mount.Path = "" },
			wantSub: "Path",
		},
		{
			name:    "unknown remote type",
			mutate:  func(c *Config) { c.Remote.Type = "gcs" },
			wantSub: "Type",
		},
		{
			name:    "s3 without bucket",
			mutate:  func(c *Config) { c.Remote.Type = "s3" },
			wantSub: "bucket",
		},
		{
			name: "s3 without region",
			mutate: func(c *Config) {
				c.Remote.Type = "s3"
				c.Remote.S3["bucket"] = "b"
			},
			wantSub: "region",
		},
		{
			name:    "unknown cache type",
			mutate:  func(c *Config) { c.Cache.Type = "redis" },
			wantSub: "Type",
		},
		{
			name:    "zero operation timeout",
			mutate:  func(c *Config) { c.Hydration.OperationTimeout = 0 },
			wantSub: "OperationTimeout",
		},
		{
			name:    "burst without rate",
			mutate:  func(c *Config) { c.Remote.Burst = 10 },
			wantSub: "requests_per_second",
		},
		{
			name: "backoff above cap",
			mutate: func(c *Config) {
				c.Hydration.RetryBackoff = 5 * time.Second
			},
			wantSub: "max_retry_backoff",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Errorf("error %q does not mention %q", err, tc.wantSub)
			}
		})
	}
}

func TestValidate_LowercaseLevelAccepted(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "debug"
	if err := Validate(cfg); err != nil {
		t.Fatalf("lowercase level rejected: %v", err)
	}
}
