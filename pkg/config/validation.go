package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom rules.
//
// This function uses go-playground/validator for declarative validation
// via struct tags, with additional custom validation for complex rules
// that cannot be expressed in tags.
//
// Note: Log level normalization is handled in ApplyDefaults, not here.
// Validation accepts both uppercase and lowercase log levels.
//
// Returns an error describing validation failures.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	return validateCustomRules(cfg)
}

// validateCustomRules performs custom validation beyond struct tags.
func validateCustomRules(cfg *Config) error {
	// The S3 client cannot be constructed without a bucket; surface that
	// before the factory does so the message names the config key.
	if cfg.Remote.Type == "s3" {
		bucket, _ := cfg.Remote.S3["bucket"].(string)
		if bucket == "" {
			return fmt.Errorf("remote.s3: bucket is required")
		}
		region, _ := cfg.Remote.S3["region"].(string)
		if region == "" {
			return fmt.Errorf("remote.s3: region is required")
		}
	}

	if cfg.Remote.RequestsPerSecond == 0 && cfg.Remote.Burst > 0 {
		return fmt.Errorf("remote: burst requires requests_per_second")
	}

	if cfg.Hydration.RetryBackoff > cfg.Hydration.MaxRetryBackoff {
		return fmt.Errorf("hydration: retry_backoff exceeds max_retry_backoff")
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrs) > 0 {
			e := validationErrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
				e.Namespace(), e.Tag(), e.Value())
		}
	}
	return err
}
