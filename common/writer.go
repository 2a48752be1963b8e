package common

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/whosonfirst/go-ioutil"
	"github.com/whosonfirst/go-writer/v3"
)

// Keyed by writer URI.
var writers = new(sync.Map)

// NewWriter returns a whosonfirst/go-writer.Writer for 'uri', which may be a writer URI (for example
// "stdout://") or a local directory. Local directories are created if necessary and written using the
// "fs://" scheme. Instances are cached in memory for repeat lookups.
func NewWriter(ctx context.Context, uri string) (writer.Writer, error) {

	if !strings.Contains(uri, "://") {

		err := os.MkdirAll(uri, 0755)

		if err != nil {
			return nil, fmt.Errorf("Failed to create output directory %s, %w", uri, err)
		}
	}

	writer_uri, err := DirectoryURI("fs", uri)

	if err != nil {
		return nil, err
	}

	v, ok := writers.Load(writer_uri)

	if ok {
		return v.(writer.Writer), nil
	}

	wr, err := writer.NewWriter(ctx, writer_uri)

	if err != nil {
		return nil, fmt.Errorf("Failed to create writer for '%s', %w", writer_uri, err)
	}

	v, _ = writers.LoadOrStore(writer_uri, wr)
	return v.(writer.Writer), nil
}

// WriteBytes writes 'body' to 'path' using 'wr'.
func WriteBytes(ctx context.Context, wr writer.Writer, path string, body []byte) error {

	fh, err := ioutil.NewReadSeekCloser(bytes.NewReader(body))

	if err != nil {
		return fmt.Errorf("Failed to create ReadSeekCloser for %s, %w", path, err)
	}

	defer fh.Close()

	_, err = wr.Write(ctx, path, fh)

	if err != nil {
		return fmt.Errorf("Failed to write %s, %w", path, err)
	}

	return nil
}
