// Package gather iterates the photos in a gocloud.dev/blob.Bucket and derives a PhotoRecord for each one
// that has both GPS metadata and a recognizable capture timestamp.
package gather

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/sfomuseum/go-photos-geojson/common"
	"github.com/sfomuseum/go-photos-geojson/gps"
	"github.com/sfomuseum/go-photos-geojson/record"
	"github.com/sfomuseum/go-photos-geojson/timestamp"
	"gocloud.dev/blob"
)

// Status describes the outcome of gathering a single file.
type Status string

const (
	// A PhotoRecord was derived.
	StatusOK Status = "ok"
	// The file is not an image.
	StatusIgnored Status = "ignored"
	// The image has no GPS metadata.
	StatusNoGPS Status = "no_gps"
	// The image has GPS metadata that could not be decoded.
	StatusMalformed Status = "malformed"
	// No timestamp could be derived from the filename (or EXIF, if enabled).
	StatusNoTimestamp Status = "no_timestamp"
	// The image has the same fingerprint as one that has already been gathered.
	StatusDuplicate Status = "duplicate"
	// The image could not be read.
	StatusFailed Status = "failed"
)

// Extensions (lowercased) of files that may carry EXIF data that goexif can read.
var exifExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
}

// GatherPhotoResponse is the result of gathering a single file.
type GatherPhotoResponse struct {
	// The bucket key of the file.
	Path string `json:"path"`
	// The normalized filename (base name with a lowercased extension).
	Image    string          `json:"image"`
	MimeType string          `json:"mimetype,omitempty"`
	Status   Status          `json:"status"`
	Match    timestamp.Match `json:"match"`
	// Only set when Status is StatusOK.
	Record      *record.PhotoRecord    `json:"record,omitempty"`
	Fingerprint string                 `json:"fingerprint,omitempty"`
	ImageHashes []*common.ImageHashRsp `json:"imagehashes,omitempty"`
	// The reason for any status other than StatusOK or StatusIgnored.
	Err     error  `json:"-"`
	Message string `json:"error,omitempty"`
}

// GatherPhotoCallbackFunc is invoked once for every file in a bucket.
type GatherPhotoCallbackFunc func(context.Context, *GatherPhotoResponse) error

// GatherPhotosOptions defines options for GatherPhotosWithOptions.
type GatherPhotosOptions struct {
	Callback GatherPhotoCallbackFunc
	// Descend in to sub-directories.
	Recursive bool
	// Compute a SHA-1 fingerprint for each image.
	Fingerprint bool
	// Compute perceptual hashes for each image.
	ImageHashes bool
	// Fall back to the DateTimeOriginal EXIF tag when a filename has no recognizable timestamp.
	ExifTimestamps bool
	// Skip images whose fingerprint has already been seen. Implies Fingerprint.
	Dedupe bool
	// An optional map of fingerprints to image names seen in previous runs (see the lookup package).
	// If nil and Dedupe is true a new map is created.
	Seen *sync.Map
}

// GatherPhotos gathers every file in 'bucket' with default options, invoking 'cb' for each.
func GatherPhotos(ctx context.Context, bucket *blob.Bucket, cb GatherPhotoCallbackFunc) error {

	opts := &GatherPhotosOptions{
		Callback: cb,
	}

	return GatherPhotosWithOptions(ctx, bucket, opts)
}

// GatherPhotosWithOptions gathers every file in 'bucket', one at a time in key order, invoking
// opts.Callback for each. Per-file problems are reported through the response's Status and never stop
// the crawl; errors listing the bucket do. Errors returned by the callback are logged.
func GatherPhotosWithOptions(ctx context.Context, bucket *blob.Bucket, opts *GatherPhotosOptions) error {

	if opts.Dedupe && opts.Seen == nil {
		opts.Seen = new(sync.Map)
	}

	var list func(context.Context, string) error

	list = func(ctx context.Context, prefix string) error {

		iter := bucket.List(&blob.ListOptions{
			Delimiter: "/",
			Prefix:    prefix,
		})

		for {

			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				// pass
			}

			obj, err := iter.Next(ctx)

			if err == io.EOF {
				break
			}

			if err != nil {
				return fmt.Errorf("Failed to list bucket, %w", err)
			}

			if obj.IsDir {

				if !opts.Recursive {
					continue
				}

				err := list(ctx, obj.Key)

				if err != nil {
					return err
				}

				continue
			}

			rsp := GatherPhotoResponseWithPath(ctx, bucket, obj.Key, opts)

			if opts.Callback == nil {
				continue
			}

			err = opts.Callback(ctx, rsp)

			if err != nil {
				slog.Error("Failed to process photo", "path", rsp.Path, "error", err)
			}
		}

		return nil
	}

	return list(ctx, "")
}

// GatherPhotoResponseWithPath gathers the file 'path' in 'bucket'.
func GatherPhotoResponseWithPath(ctx context.Context, bucket *blob.Bucket, path string, opts *GatherPhotosOptions) *GatherPhotoResponse {

	logger := slog.Default()
	logger = logger.With("path", path)

	image := timestamp.NormalizeFilename(path)
	ext := strings.ToLower(filepath.Ext(image))

	rsp := &GatherPhotoResponse{
		Path:  path,
		Image: image,
	}

	t := mime.TypeByExtension(ext)

	if !strings.HasPrefix(t, "image/") {
		logger.Debug("Not an image, skipping")
		rsp.Status = StatusIgnored
		return rsp
	}

	rsp.MimeType = t

	if opts.Fingerprint || opts.Dedupe {

		fp, err := common.FingerprintFile(ctx, bucket, path)

		if err != nil {
			return failed(rsp, StatusFailed, fmt.Errorf("Failed to fingerprint %s, %w", path, err))
		}

		rsp.Fingerprint = fp

		if opts.Dedupe {

			other, exists := opts.Seen.Load(fp)

			if exists {
				return failed(rsp, StatusDuplicate, fmt.Errorf("Same fingerprint as %v", other))
			}
		}
	}

	x, err := readExif(ctx, bucket, path, ext)

	if err != nil {
		return failed(rsp, classify(err), err)
	}

	coords, err := gps.FromExif(x)

	if err != nil {
		return failed(rsp, classify(err), err)
	}

	rsp.Match = timestamp.Extract(image)

	if !rsp.Match.OK() && opts.ExifTimestamps {

		ts, ok := timestamp.FromExif(x)

		if ok {
			rsp.Match = timestamp.Match{
				Layout:    timestamp.LayoutExif,
				Timestamp: ts,
			}
		}
	}

	if !rsp.Match.OK() {
		return failed(rsp, StatusNoTimestamp, fmt.Errorf("Filename %s does not contain a recognizable timestamp", image))
	}

	r, err := record.New(image, coords, rsp.Match.Timestamp)

	if err != nil {
		return failed(rsp, StatusMalformed, err)
	}

	if opts.ImageHashes {

		hashes, err := common.ImageHashes(ctx, bucket, path)

		if err != nil {
			logger.Warn("Failed to derive image hashes", "error", err)
		} else {
			rsp.ImageHashes = hashes
		}
	}

	if opts.Dedupe {
		opts.Seen.Store(rsp.Fingerprint, image)
	}

	rsp.Record = r
	rsp.Status = StatusOK

	logger.Debug("Gathered photo", "longitude", r.Longitude, "latitude", r.Latitude, "timestamp", r.Timestamp, "layout", rsp.Match.Layout.String())
	return rsp
}

func readExif(ctx context.Context, bucket *blob.Bucket, path string, ext string) (*exif.Exif, error) {

	if !exifExtensions[ext] {
		return nil, fmt.Errorf("%w, %s files do not carry EXIF data", gps.ErrNoGPS, ext)
	}

	fh, err := bucket.NewReader(ctx, path, nil)

	if err != nil {
		return nil, fmt.Errorf("Failed to open %s for reading, %w", path, err)
	}

	defer fh.Close()

	return gps.DecodeExif(fh)
}

func classify(err error) Status {

	switch {
	case gps.IsNoGPS(err):
		return StatusNoGPS
	case gps.IsMalformed(err):
		return StatusMalformed
	default:
		return StatusFailed
	}
}

func failed(rsp *GatherPhotoResponse, status Status, err error) *GatherPhotoResponse {
	rsp.Status = status
	rsp.Err = err
	rsp.Message = err.Error()
	return rsp
}
