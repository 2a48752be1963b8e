package common

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
)

// DirectoryURI returns a URI with 'scheme' for the absolute path of 'path'. Values that already
// contain "://" are returned as-is.
func DirectoryURI(scheme string, path string) (string, error) {

	if strings.Contains(path, "://") {
		return path, nil
	}

	abs_path, err := filepath.Abs(path)

	if err != nil {
		return "", fmt.Errorf("Failed to derive absolute path for %s, %w", path, err)
	}

	u := url.URL{
		Scheme: scheme,
		Path:   filepath.ToSlash(abs_path),
	}

	return u.String(), nil
}

// OpenDirectoryBucket opens a gocloud.dev/blob.Bucket for the local directory 'path' (or a bucket URI).
// Local directories that are missing, or are not directories, return an error.
func OpenDirectoryBucket(ctx context.Context, path string) (*blob.Bucket, error) {

	if !strings.Contains(path, "://") {

		info, err := os.Stat(path)

		if err != nil {
			return nil, fmt.Errorf("Failed to stat input directory %s, %w", path, err)
		}

		if !info.IsDir() {
			return nil, fmt.Errorf("Input path %s is not a directory", path)
		}
	}

	bucket_uri, err := DirectoryURI("file", path)

	if err != nil {
		return nil, err
	}

	bucket, err := blob.OpenBucket(ctx, bucket_uri)

	if err != nil {
		return nil, fmt.Errorf("Failed to open bucket for %s, %w", bucket_uri, err)
	}

	return bucket, nil
}
