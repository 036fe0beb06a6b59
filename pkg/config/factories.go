package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mitchellh/mapstructure"

	"github.com/DrChat/razmount/internal/logger"
	"github.com/DrChat/razmount/internal/ratelimiter"
	"github.com/DrChat/razmount/pkg/rangestore"
	badgerStore "github.com/DrChat/razmount/pkg/rangestore/badger"
	memoryStore "github.com/DrChat/razmount/pkg/rangestore/memory"
	"github.com/DrChat/razmount/pkg/remote"
	remoteMemory "github.com/DrChat/razmount/pkg/remote/memory"
	remoteS3 "github.com/DrChat/razmount/pkg/remote/s3"
)

// CreateObjectClient creates a remote object client based on configuration.
//
// This factory function uses the Type field to determine which client
// implementation to create, then decodes the type-specific configuration
// from the corresponding map and passes it to the client's constructor.
//
// Supported types:
//   - "s3": Uses pkg/remote/s3 (Amazon S3 or compatible storage)
//   - "memory": Uses pkg/remote/memory (in-memory, for testing and demos)
//
// Parameters:
//   - ctx: Context for initialization operations
//   - cfg: Remote store configuration
//   - metrics: Client metrics recorder (nil selects a no-op)
//
// Returns:
//   - remote.ObjectClient: Initialized client
//   - error: Configuration or initialization error
func CreateObjectClient(ctx context.Context, cfg *RemoteConfig, metrics remoteS3.Metrics) (remote.ObjectClient, error) {
	switch cfg.Type {
	case "s3":
		return createS3ObjectClient(ctx, cfg.S3, metrics)
	case "memory":
		return remoteMemory.New(), nil
	default:
		return nil, fmt.Errorf("unknown remote store type: %q (supported: s3, memory)", cfg.Type)
	}
}

// createS3ObjectClient creates an S3-backed object client.
func createS3ObjectClient(ctx context.Context, options map[string]any, metrics remoteS3.Metrics) (remote.ObjectClient, error) {
	// Define the configuration struct for the S3 client
	type S3ClientConfig struct {
		Region          string `mapstructure:"region"`
		Bucket          string `mapstructure:"bucket"`
		KeyPrefix       string `mapstructure:"key_prefix"`
		Endpoint        string `mapstructure:"endpoint"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
	}

	var clientCfg S3ClientConfig
	if err := mapstructure.Decode(options, &clientCfg); err != nil {
		return nil, fmt.Errorf("failed to decode S3 remote config: %w", err)
	}

	if clientCfg.Bucket == "" {
		return nil, fmt.Errorf("S3 remote: bucket is required")
	}

	if clientCfg.Region == "" {
		return nil, fmt.Errorf("S3 remote: region is required")
	}

	// ========================================================================
	// Step 1: Build AWS Config
	// ========================================================================

	var configOptions []func(*awsConfig.LoadOptions) error

	configOptions = append(configOptions, awsConfig.WithRegion(clientCfg.Region))

	// Set custom endpoint if provided (for MinIO, Localstack, Azurite
	// S3 gateways, etc.)
	if clientCfg.Endpoint != "" {
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		customResolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
				return aws.Endpoint{
					URL:               clientCfg.Endpoint,
					HostnameImmutable: true,
					Source:            aws.EndpointSourceCustom,
				}, nil
			},
		)
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		configOptions = append(configOptions, awsConfig.WithEndpointResolverWithOptions(customResolver))
	}

	// Set credentials if provided, otherwise use default credential chain
	if clientCfg.AccessKeyID != "" && clientCfg.SecretAccessKey != "" {
		credProvider := credentials.NewStaticCredentialsProvider(
			clientCfg.AccessKeyID,
			clientCfg.SecretAccessKey,
			"", // session token (empty for static credentials)
		)
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(credProvider))
	}

	// The hydration engine owns retry and backoff; SDK-level retries
	// would multiply attempt counts and defeat its rate limiting.
	configOptions = append(configOptions, awsConfig.WithRetryer(func() aws.Retryer {
		return retry.NewStandard(func(o *retry.StandardOptions) {
			o.MaxAttempts = 1
		})
	}))

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// ========================================================================
	// Step 2: Create S3 Client
	// ========================================================================

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// Force path-style addressing for compatibility with MinIO/Localstack
		if clientCfg.Endpoint != "" {
			o.UsePathStyle = true
		}
	})

	// ========================================================================
	// Step 3: Create Object Client
	// ========================================================================

	objectClient, err := remoteS3.New(ctx, remoteS3.Config{
		Client:    client,
		Bucket:    clientCfg.Bucket,
		KeyPrefix: clientCfg.KeyPrefix,
		Metrics:   metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 object client: %w", err)
	}

	logger.Info("S3 remote initialized: bucket=%s, region=%s, prefix=%s",
		clientCfg.Bucket, clientCfg.Region, clientCfg.KeyPrefix)

	return objectClient, nil
}

// CreateRangeStore creates a hydrated-content store based on configuration.
//
// Supported types:
//   - "memory": Uses pkg/rangestore/memory (heap-resident)
//   - "badger": Uses pkg/rangestore/badger (ephemeral on-disk)
//
// Parameters:
//   - ctx: Context for initialization operations
//   - cfg: Cache configuration
//
// Returns:
//   - rangestore.Store: Initialized store; caller owns Close
//   - error: Configuration or initialization error
func CreateRangeStore(ctx context.Context, cfg *CacheConfig) (rangestore.Store, error) {
	switch cfg.Type {
	case "memory":
		return memoryStore.New(), nil
	case "badger":
		return createBadgerRangeStore(ctx, cfg.Badger)
	default:
		return nil, fmt.Errorf("unknown cache type: %q (supported: memory, badger)", cfg.Type)
	}
}

// createBadgerRangeStore creates a BadgerDB-backed range store.
func createBadgerRangeStore(ctx context.Context, options map[string]any) (rangestore.Store, error) {
	type BadgerCacheOptions struct {
		// Dir holds the database. Empty selects a fresh temporary
		// directory removed on close, preserving mount-scoped lifetime.
		Dir string `mapstructure:"dir"`
	}

	var storeOpts BadgerCacheOptions
	if err := mapstructure.Decode(options, &storeOpts); err != nil {
		return nil, fmt.Errorf("failed to decode badger cache options: %w", err)
	}

	store, err := badgerStore.New(ctx, badgerStore.Config{Dir: storeOpts.Dir})
	if err != nil {
		return nil, fmt.Errorf("failed to create badger cache: %w", err)
	}

	logger.Info("Badger hydration cache initialized: dir=%s", store.Dir())
	return store, nil
}

// CreateLimiter creates the remote throttler, or nil when throttling is
// disabled.
func CreateLimiter(cfg *RemoteConfig) *ratelimiter.RateLimiter {
	if cfg.RequestsPerSecond == 0 {
		return nil
	}
	return ratelimiter.New(cfg.RequestsPerSecond, cfg.Burst)
}
