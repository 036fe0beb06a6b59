// Package s3 implements the remote object client against Amazon S3 or any
// S3-compatible store.
//
// The projected namespace maps directly onto object keys: a virtual path is
// the object key relative to the configured key prefix, and directory levels
// are inferred from delimiter listings. The client performs no retries and
// holds no state; retry and caching policy belong to the hydration engine.
package s3

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/DrChat/razmount/pkg/remote"
)

// ObjectClient implements remote.ObjectClient using S3.
//
// Key Design:
//   - Virtual paths are object keys relative to KeyPrefix
//   - Format: "path/to/file" (no leading "/")
//   - Directories exist only as common prefixes in delimiter listings
//   - The object ETag is used verbatim as the remote tag
//
// Thread Safety:
// Safe for concurrent use by multiple goroutines; the underlying SDK client
// is shared without additional locking.
type ObjectClient struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
	metrics   Metrics
}

// Config contains configuration for the S3 object client.
type Config struct {
	// Client is the configured S3 SDK client.
	Client *s3.Client

	// Bucket is the S3 bucket name.
	Bucket string

	// KeyPrefix is an optional prefix prepended to all object keys. With
	// prefix "projects/", the virtual path "docs/a.txt" resolves to the key
	// "projects/docs/a.txt".
	KeyPrefix string

	// Metrics receives operation observations. Nil selects a no-op
	// implementation.
	Metrics Metrics
}

// New creates an S3-backed object client and verifies bucket access.
//
// The bucket must already exist; this function does not create it.
func New(ctx context.Context, cfg Config) (*ObjectClient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if cfg.Client == nil {
		return nil, fmt.Errorf("S3 client is required")
	}

	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}

	c := &ObjectClient{
		client:    cfg.Client,
		bucket:    cfg.Bucket,
		keyPrefix: normalizePrefix(cfg.KeyPrefix),
		metrics:   metrics,
	}

	if _, err := cfg.Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: &cfg.Bucket,
	}); err != nil {
		return nil, fmt.Errorf("failed to access bucket %q: %w", cfg.Bucket, classify(err))
	}

	return c, nil
}

// normalizePrefix ensures a non-empty prefix ends with exactly one "/".
func normalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}

// objectKey returns the full S3 object key for a virtual path.
func (c *ObjectClient) objectKey(path string) string {
	return c.keyPrefix + strings.TrimPrefix(path, "/")
}

// classify maps an SDK error onto the remote error taxonomy.
//
// NoSuchKey and NoSuchBucket are permanent missing-object conditions;
// InvalidRange means the requested offset is past the object's end;
// PreconditionFailed means a conditional read lost against a replaced object;
// anything else (connection resets, timeouts, throttling, 5xx responses) is
// treated as transient and left to the engine's retry policy.
func classify(err error) error {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return remote.ErrNotFound
	}

	var noBucket *types.NoSuchBucket
	if errors.As(err, &noBucket) {
		return remote.ErrNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket":
			return remote.ErrNotFound
		case "InvalidRange":
			return remote.ErrRangeUnsatisfiable
		case "PreconditionFailed":
			return remote.ErrTagMismatch
		}
	}

	return remote.ErrUnavailable
}
