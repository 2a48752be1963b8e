package common

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/whosonfirst/go-reader/v2"
)

// Keyed by reader URI.
var readers = new(sync.Map)

// NewReader returns a whosonfirst/go-reader.Reader for 'uri', which may be a reader URI or a local
// directory (read using the "fs://" scheme). Instances are cached in memory for repeat lookups.
func NewReader(ctx context.Context, uri string) (reader.Reader, error) {

	reader_uri, err := DirectoryURI("fs", uri)

	if err != nil {
		return nil, err
	}

	v, ok := readers.Load(reader_uri)

	if ok {
		return v.(reader.Reader), nil
	}

	r, err := reader.NewReader(ctx, reader_uri)

	if err != nil {
		return nil, fmt.Errorf("Failed to create reader for '%s', %w", reader_uri, err)
	}

	v, _ = readers.LoadOrStore(reader_uri, r)
	return v.(reader.Reader), nil
}

// ReadFile returns the contents of 'path' relative to 'uri' (see NewReader).
func ReadFile(ctx context.Context, uri string, path string) ([]byte, error) {

	r, err := NewReader(ctx, uri)

	if err != nil {
		return nil, err
	}

	fh, err := r.Read(ctx, path)

	if err != nil {
		return nil, fmt.Errorf("Failed to open %s for reading, %w", path, err)
	}

	defer fh.Close()

	body, err := io.ReadAll(fh)

	if err != nil {
		return nil, fmt.Errorf("Failed to read %s, %w", path, err)
	}

	return body, nil
}
