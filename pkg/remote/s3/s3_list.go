// This file contains the delimiter listing that backs directory enumeration.
package s3

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/DrChat/razmount/pkg/remote"
)

// ListChildren lists the immediate children of a prefix, one hierarchy level
// only.
//
// This issues a paginated ListObjectsV2 with Delimiter="/": objects directly
// under the prefix come back in Contents and deeper levels are folded into
// CommonPrefixes, which become directory children. The listing order S3
// returns is not guaranteed stable and callers must not rely on it.
//
// A non-root prefix with no objects at or beneath it no longer exists as far
// as an object store is concerned, so an empty result maps to ErrNotFound.
// The root prefix is exempt: an empty container is an empty directory.
func (c *ObjectClient) ListChildren(ctx context.Context, prefix string) (children []remote.ObjectInfo, err error) {
	start := time.Now()
	defer func() {
		c.metrics.ObserveOperation("ListChildren", time.Since(start), err)
	}()

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	listPrefix := c.keyPrefix
	if p := strings.TrimPrefix(prefix, "/"); p != "" {
		listPrefix += p + "/"
	}

	paginator := s3.NewListObjectsV2Paginator(c.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(c.bucket),
		Prefix:    aws.String(listPrefix),
		Delimiter: aws.String("/"),
	})

	for paginator.HasMorePages() {
		if err = ctx.Err(); err != nil {
			return nil, err
		}

		page, perr := paginator.NextPage(ctx)
		if perr != nil {
			err = fmt.Errorf("failed to list %q: %w", listPrefix, classify(perr))
			return nil, err
		}

		for _, cp := range page.CommonPrefixes {
			if cp.Prefix == nil {
				continue
			}

			name := strings.TrimSuffix(strings.TrimPrefix(*cp.Prefix, listPrefix), "/")
			if name == "" {
				continue
			}

			children = append(children, remote.ObjectInfo{
				Name: name,
				Kind: remote.KindDirectory,
			})
		}

		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}

			name := strings.TrimPrefix(*obj.Key, listPrefix)
			if name == "" {
				// Zero-length marker object some tools create for the
				// directory itself.
				continue
			}

			info := remote.ObjectInfo{
				Name: name,
				Kind: remote.KindFile,
			}
			if obj.Size != nil {
				info.Size = uint64(*obj.Size)
			}
			if obj.ETag != nil {
				info.Tag = strings.Trim(*obj.ETag, `"`)
			}

			children = append(children, info)
		}
	}

	if len(children) == 0 && listPrefix != c.keyPrefix {
		err = fmt.Errorf("prefix %q: %w", prefix, remote.ErrNotFound)
		return nil, err
	}

	return children, nil
}
