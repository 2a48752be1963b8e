package gather

import (
	"context"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sfomuseum/go-photos-geojson/common"
	"github.com/sfomuseum/go-photos-geojson/gps"
	"github.com/sfomuseum/go-photos-geojson/internal/exiftest"
	"github.com/sfomuseum/go-photos-geojson/timestamp"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
)

func writeFixture(t *testing.T, root string, rel string, f exiftest.Fixture) []byte {
	t.Helper()

	body, err := exiftest.JPEG(f)

	if err != nil {
		t.Fatalf("exiftest.JPEG() error: %v", err)
	}

	writeFile(t, root, rel, body)
	return body
}

func writeFile(t *testing.T, root string, rel string, body []byte) {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(rel))

	err := os.MkdirAll(filepath.Dir(path), 0o755)

	if err != nil {
		t.Fatalf("MkdirAll() error: %v", err)
	}

	err = os.WriteFile(path, body, 0o644)

	if err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
}

func openBucket(t *testing.T, root string) *blob.Bucket {
	t.Helper()

	u := url.URL{Scheme: "file", Path: filepath.ToSlash(root)}

	bucket, err := blob.OpenBucket(context.Background(), u.String())

	if err != nil {
		t.Fatalf("OpenBucket() error: %v", err)
	}

	t.Cleanup(func() { bucket.Close() })
	return bucket
}

func gatherAll(t *testing.T, bucket *blob.Bucket, opts *GatherPhotosOptions) map[string]*GatherPhotoResponse {
	t.Helper()

	responses := make(map[string]*GatherPhotoResponse)

	opts.Callback = func(ctx context.Context, rsp *GatherPhotoResponse) error {
		responses[rsp.Path] = rsp
		return nil
	}

	err := GatherPhotosWithOptions(context.Background(), bucket, opts)

	if err != nil {
		t.Fatalf("GatherPhotosWithOptions() error: %v", err)
	}

	return responses
}

func TestGatherPhotos(t *testing.T) {

	root := t.TempDir()

	malformed := exiftest.GPS(44.5646, -123.2620)
	malformed.LongitudeRef = ""

	writeFixture(t, root, "20190124_153045.jpg", exiftest.GPS(44.5646, -123.2620))
	writeFixture(t, root, "IMG_20190124_153046_edited.JPG", exiftest.GPS(-33.8568, 151.2153))
	writeFixture(t, root, "20190124_153047.jpg", exiftest.Fixture{})
	writeFixture(t, root, "20190124_153048.jpg", malformed)
	writeFixture(t, root, "photo.jpg", exiftest.GPS(1, 2))
	writeFile(t, root, "notes.txt", []byte("hello"))
	writeFile(t, root, "20190124_153049.jpg", []byte{})
	writeFixture(t, root, "sub/20190125_100000.jpg", exiftest.GPS(1, 2))

	bucket := openBucket(t, root)
	responses := gatherAll(t, bucket, &GatherPhotosOptions{})

	tests := map[string]Status{
		"20190124_153045.jpg":            StatusOK,
		"IMG_20190124_153046_edited.JPG": StatusOK,
		"20190124_153047.jpg":            StatusNoGPS,
		"20190124_153048.jpg":            StatusMalformed,
		"20190124_153049.jpg":            StatusFailed,
		"photo.jpg":                      StatusNoTimestamp,
		"notes.txt":                      StatusIgnored,
	}

	if len(responses) != len(tests) {
		t.Fatalf("expected %d responses, got %d", len(tests), len(responses))
	}

	for path, want := range tests {

		rsp, ok := responses[path]

		if !ok {
			t.Fatalf("missing response for %s", path)
		}

		if rsp.Status != want {
			t.Fatalf("%s status=%s want %s (%s)", path, rsp.Status, want, rsp.Message)
		}

		if want != StatusOK && rsp.Record != nil {
			t.Fatalf("%s should not have a record", path)
		}

		if want != StatusOK && want != StatusIgnored && rsp.Message == "" {
			t.Fatalf("%s should have a message", path)
		}
	}

	r := responses["20190124_153045.jpg"].Record

	if r.Image != "20190124_153045.jpg" || r.Timestamp != "2019-01-24T15:30:45" {
		t.Fatalf("unexpected record %+v", r)
	}

	if math.Abs(r.Latitude-44.5646) > 1e-4 || math.Abs(r.Longitude-(-123.2620)) > 1e-4 {
		t.Fatalf("unexpected coordinates %+v", r)
	}

	rsp := responses["IMG_20190124_153046_edited.JPG"]

	if rsp.Image != "IMG_20190124_153046_edited.jpg" {
		t.Fatalf("image=%q", rsp.Image)
	}

	if rsp.Match.Layout != timestamp.LayoutAppAnnotated {
		t.Fatalf("layout=%s", rsp.Match.Layout)
	}

	if rsp.Record.Latitude >= 0 || rsp.Record.Longitude <= 0 {
		t.Fatalf("expected southern and eastern hemispheres, got %+v", rsp.Record)
	}

	if !gps.IsMalformed(responses["20190124_153048.jpg"].Err) {
		t.Fatalf("expected malformed error, got %v", responses["20190124_153048.jpg"].Err)
	}
}

func TestGatherPhotosRecursive(t *testing.T) {

	root := t.TempDir()

	writeFixture(t, root, "20190124_153045.jpg", exiftest.GPS(44.5646, -123.2620))
	writeFixture(t, root, "sub/20190125_100000.jpg", exiftest.GPS(1, 2))

	bucket := openBucket(t, root)
	responses := gatherAll(t, bucket, &GatherPhotosOptions{Recursive: true})

	rsp, ok := responses["sub/20190125_100000.jpg"]

	if !ok {
		t.Fatalf("expected nested photo to be gathered, got %d responses", len(responses))
	}

	if rsp.Status != StatusOK || rsp.Record.Image != "20190125_100000.jpg" {
		t.Fatalf("unexpected response %+v", rsp)
	}
}

func TestGatherPhotosDedupe(t *testing.T) {

	root := t.TempDir()

	body := writeFixture(t, root, "20190124_153045.jpg", exiftest.GPS(44.5646, -123.2620))
	writeFile(t, root, "20190124_153046.jpg", body)

	bucket := openBucket(t, root)
	responses := gatherAll(t, bucket, &GatherPhotosOptions{Dedupe: true})

	first := responses["20190124_153045.jpg"]
	second := responses["20190124_153046.jpg"]

	if first.Status != StatusOK {
		t.Fatalf("first status=%s (%s)", first.Status, first.Message)
	}

	if first.Fingerprint == "" || first.Fingerprint != second.Fingerprint {
		t.Fatalf("expected matching fingerprints, got %q and %q", first.Fingerprint, second.Fingerprint)
	}

	if second.Status != StatusDuplicate {
		t.Fatalf("second status=%s", second.Status)
	}
}

func TestGatherPhotosSeen(t *testing.T) {

	root := t.TempDir()

	writeFixture(t, root, "20190124_153045.jpg", exiftest.GPS(44.5646, -123.2620))

	bucket := openBucket(t, root)

	first := gatherAll(t, bucket, &GatherPhotosOptions{Fingerprint: true})
	fp := first["20190124_153045.jpg"].Fingerprint

	seen := new(sync.Map)
	seen.Store(fp, "previous.jpg")

	second := gatherAll(t, bucket, &GatherPhotosOptions{Dedupe: true, Seen: seen})

	if second["20190124_153045.jpg"].Status != StatusDuplicate {
		t.Fatalf("expected photo from a previous run to be a duplicate")
	}
}

func TestGatherPhotosExifTimestamps(t *testing.T) {

	root := t.TempDir()

	f := exiftest.GPS(44.5646, -123.2620)
	f.DateTimeOriginal = "2019:01:24 15:30:45"

	writeFixture(t, root, "photo.jpg", f)

	bucket := openBucket(t, root)

	without := gatherAll(t, bucket, &GatherPhotosOptions{})

	if without["photo.jpg"].Status != StatusNoTimestamp {
		t.Fatalf("status=%s want %s", without["photo.jpg"].Status, StatusNoTimestamp)
	}

	with := gatherAll(t, bucket, &GatherPhotosOptions{ExifTimestamps: true})
	rsp := with["photo.jpg"]

	if rsp.Status != StatusOK {
		t.Fatalf("status=%s (%s)", rsp.Status, rsp.Message)
	}

	if rsp.Match.Layout != timestamp.LayoutExif || rsp.Record.Timestamp != "2019-01-24T15:30:45" {
		t.Fatalf("unexpected match %+v", rsp.Match)
	}
}

func TestGatherPhotosImageHashes(t *testing.T) {

	root := t.TempDir()

	writeFixture(t, root, "20190124_153045.jpg", exiftest.GPS(44.5646, -123.2620))

	bucket := openBucket(t, root)
	responses := gatherAll(t, bucket, &GatherPhotosOptions{ImageHashes: true})

	rsp := responses["20190124_153045.jpg"]

	if rsp.Status != StatusOK {
		t.Fatalf("status=%s (%s)", rsp.Status, rsp.Message)
	}

	if len(rsp.ImageHashes) != len(common.ImageHashApproaches) {
		t.Fatalf("expected %d image hashes, got %d", len(common.ImageHashApproaches), len(rsp.ImageHashes))
	}

	for i, h := range rsp.ImageHashes {

		if h.Approach != common.ImageHashApproaches[i] {
			t.Fatalf("approach=%s want %s", h.Approach, common.ImageHashApproaches[i])
		}

		if h.Hash == "" {
			t.Fatalf("empty %s hash", h.Approach)
		}
	}
}

func TestGatherPhotosCancelled(t *testing.T) {

	root := t.TempDir()

	writeFixture(t, root, "20190124_153045.jpg", exiftest.GPS(44.5646, -123.2620))

	bucket := openBucket(t, root)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := GatherPhotos(ctx, bucket, nil)

	if err == nil {
		t.Fatalf("expected error from cancelled context")
	}
}
