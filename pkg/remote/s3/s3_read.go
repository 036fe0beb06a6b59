// This file contains the byte-range fetch that backs file hydration.
package s3

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/DrChat/razmount/pkg/remote"
)

// FetchRange reads length bytes of the named object starting at offset using
// an S3 byte-range request.
//
// This never downloads more than the requested window, which matters when the
// operating system reads a large projected file a few pages at a time. The
// returned slice is exactly length bytes, or shorter only when the range runs
// past the end of the object.
//
// A non-empty tag is sent as an If-Match precondition so the store itself
// rejects reads against a replaced object; the engine sees the rejection as
// ErrTagMismatch instead of silently receiving bytes of the new version.
//
// An offset at or beyond the object's size comes back from S3 as InvalidRange
// and is surfaced as ErrRangeUnsatisfiable; an object deleted since it was
// listed surfaces as ErrNotFound.
func (c *ObjectClient) FetchRange(ctx context.Context, key string, tag string, offset uint64, length uint64) (data []byte, err error) {
	start := time.Now()
	defer func() {
		c.metrics.ObserveOperation("FetchRange", time.Since(start), err)
		if len(data) > 0 {
			c.metrics.RecordBytes("fetch", int64(len(data)))
		}
	}()

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	if length == 0 {
		return nil, nil
	}

	objectKey := c.objectKey(key)

	// S3 ranges are inclusive on both ends.
	end := offset + length - 1
	rangeStr := fmt.Sprintf("bytes=%d-%d", offset, end)

	input := &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(objectKey),
		Range:  aws.String(rangeStr),
	}
	if tag != "" {
		// ETags travel quoted in HTTP headers; the listing strips the
		// quotes, so they are restored here.
		input.IfMatch = aws.String(`"` + tag + `"`)
	}

	result, gerr := c.client.GetObject(ctx, input)
	if gerr != nil {
		err = fmt.Errorf("failed to fetch %s [%d,%d): %w", key, offset, offset+length, classify(gerr))
		return nil, err
	}
	defer func() { _ = result.Body.Close() }()

	buf := make([]byte, length)
	n, rerr := io.ReadFull(result.Body, buf)
	switch rerr {
	case nil, io.ErrUnexpectedEOF:
		// Short read means the object ends inside the requested range;
		// return what the store had, mirroring io.ReaderAt semantics.
		return buf[:n], nil
	default:
		err = fmt.Errorf("failed to read body for %s: %w", key, remote.ErrUnavailable)
		return nil, err
	}
}
