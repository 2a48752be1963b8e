// gather is a command line tool that emits one JSON-encoded response per file for one or more directories
// of photos, reporting the GPS coordinates and timestamp derived for each (or why none could be).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"

	"github.com/sfomuseum/go-photos-geojson/common"
	"github.com/sfomuseum/go-photos-geojson/operations/gather"
)

func main() {

	var recursive bool
	var fingerprint bool
	var imagehashes bool
	var exif_timestamps bool
	var dedupe bool
	var verbose bool

	flag.BoolVar(&recursive, "recursive", false, "Descend in to sub-directories.")
	flag.BoolVar(&fingerprint, "fingerprint", false, "Compute a SHA-1 fingerprint for each photo.")
	flag.BoolVar(&imagehashes, "imagehashes", false, "Compute perceptual hashes for each photo.")
	flag.BoolVar(&exif_timestamps, "exif-timestamps", false, "Fall back to the DateTimeOriginal EXIF tag for photos whose filenames have no timestamp.")
	flag.BoolVar(&dedupe, "dedupe", false, "Skip photos whose fingerprint has already been seen.")
	flag.BoolVar(&verbose, "verbose", false, "Enable verbose (debug) logging.")

	flag.Parse()

	if verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
		slog.Debug("Verbose logging enabled")
	}

	ctx := context.Background()

	cb := func(ctx context.Context, rsp *gather.GatherPhotoResponse) error {

		enc, err := json.Marshal(rsp)

		if err != nil {
			return err
		}

		fmt.Println(string(enc))
		return nil
	}

	opts := &gather.GatherPhotosOptions{
		Callback:       cb,
		Recursive:      recursive,
		Fingerprint:    fingerprint,
		ImageHashes:    imagehashes,
		ExifTimestamps: exif_timestamps,
		Dedupe:         dedupe,
	}

	for _, path := range flag.Args() {

		slog.Debug("Gather photos", "path", path)

		bucket, err := common.OpenDirectoryBucket(ctx, path)

		if err != nil {
			log.Fatal(err)
		}

		err = gather.GatherPhotosWithOptions(ctx, bucket, opts)

		bucket.Close()

		if err != nil {
			log.Fatal(err)
		}
	}
}
