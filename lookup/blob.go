package lookup

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"gocloud.dev/blob"
)

// BlobLookerUpper reads every ".geojson" file in a gocloud.dev/blob.Bucket.
type BlobLookerUpper struct {
	LookerUpper
	bucket *blob.Bucket
}

// NewBlobLookerUpper returns a BlobLookerUpper for the bucket 'uri'.
func NewBlobLookerUpper(ctx context.Context, uri string) (LookerUpper, error) {

	bucket, err := blob.OpenBucket(ctx, uri)

	if err != nil {
		return nil, fmt.Errorf("Failed to open bucket %s, %w", uri, err)
	}

	return NewBlobLookerUpperWithBucket(ctx, bucket)
}

// NewBlobLookerUpperWithBucket returns a BlobLookerUpper for 'bucket'.
func NewBlobLookerUpperWithBucket(ctx context.Context, bucket *blob.Bucket) (LookerUpper, error) {

	l := &BlobLookerUpper{
		bucket: bucket,
	}

	return l, nil
}

// Append reads each GeoJSON file in the bucket and hands it to each of 'append_funcs'.
func (l *BlobLookerUpper) Append(ctx context.Context, lu *sync.Map, append_funcs ...AppendLookupFunc) error {

	bucket_iter := l.bucket.List(nil)

	for {
		obj, err := bucket_iter.Next(ctx)

		if err == io.EOF {
			break
		}

		if err != nil {
			return fmt.Errorf("Failed to list bucket, %w", err)
		}

		if !strings.EqualFold(filepath.Ext(obj.Key), ".geojson") {
			continue
		}

		body, err := l.bucket.ReadAll(ctx, obj.Key)

		if err != nil {
			return fmt.Errorf("Failed to read %s, %w", obj.Key, err)
		}

		for _, f := range append_funcs {

			br := bytes.NewReader(body)
			fh := io.NopCloser(br)

			err := f(ctx, lu, fh)

			if err != nil {
				return fmt.Errorf("Failed to append %s, %w", obj.Key, err)
			}
		}
	}

	return nil
}
