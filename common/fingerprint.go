package common

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"

	"gocloud.dev/blob"
)

// FingerprintFile returns the SHA-1 hash of the file 'key' stored in 'bucket'.
func FingerprintFile(ctx context.Context, bucket *blob.Bucket, key string) (string, error) {

	fh, err := bucket.NewReader(ctx, key, nil)

	if err != nil {
		return "", fmt.Errorf("Failed to open %s for reading, %w", key, err)
	}

	defer fh.Close()

	return Fingerprint(fh)
}

// Fingerprint returns the SHA-1 hash of everything in 'r'.
func Fingerprint(r io.Reader) (string, error) {

	// h := sha256.New()
	h := sha1.New()

	_, err := io.Copy(h, r)

	if err != nil {
		return "", err
	}

	hash := h.Sum(nil)
	return hex.EncodeToString(hash[:]), nil
}
