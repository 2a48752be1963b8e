// photos2geojson is a command line tool that reads a directory of geotagged photos and writes their
// locations as a CSV file and a GeoJSON FeatureCollection of Point features.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sfomuseum/go-photos-geojson/config"
	"github.com/sfomuseum/go-photos-geojson/operations/process"
)

type multiString []string

func (m *multiString) String() string {
	return strings.Join(*m, ",")
}

func (m *multiString) Set(v string) error {
	*m = append(*m, v)
	return nil
}

func main() {

	defaults := config.Default()

	var config_path string

	var input string
	var output_dir string
	var writer_uri string
	var name string

	var recursive bool
	var fingerprint bool
	var imagehashes bool
	var exif_timestamps bool
	var dedupe bool

	var lookup multiString

	var strict bool
	var verbose bool

	flag.StringVar(&config_path, "config", "", "Optional path to a YAML config file. Flags that are set explicitly override its values.")

	flag.StringVar(&input, "input", defaults.Input, "The directory containing photos.")
	flag.StringVar(&output_dir, "output-dir", defaults.OutputDir, "The directory where CSV and GeoJSON files are written.")
	flag.StringVar(&writer_uri, "writer-uri", "", "An optional whosonfirst/go-writer URI (for example stdout://) that overrides -output-dir.")
	flag.StringVar(&name, "name", defaults.Name, "The base name, sans extension, of the CSV and GeoJSON files.")

	flag.BoolVar(&recursive, "recursive", false, "Descend in to sub-directories.")
	flag.BoolVar(&fingerprint, "fingerprint", false, "Add a media:fingerprint (SHA-1) property to each feature.")
	flag.BoolVar(&imagehashes, "imagehashes", false, "Add media:imagehash_avg, media:imagehash_diff and media:imagehash_perception properties to each feature.")
	flag.BoolVar(&exif_timestamps, "exif-timestamps", false, "Fall back to the DateTimeOriginal EXIF tag for photos whose filenames have no timestamp.")
	flag.BoolVar(&dedupe, "dedupe", false, "Skip photos whose fingerprint has already been seen.")

	flag.Var(&lookup, "lookup", "A directory of previously exported GeoJSON files. Photos whose fingerprints appear in them are skipped. May be passed multiple times.")

	flag.BoolVar(&strict, "strict", false, "Exit with an error if any photo has malformed GPS metadata.")
	flag.BoolVar(&verbose, "verbose", false, "Enable verbose (debug) logging.")

	flag.Parse()

	cfg := defaults

	if config_path != "" {

		c, err := config.Load(config_path)

		if err != nil {
			log.Fatalf("Failed to load config %s, %v", config_path, err)
		}

		cfg = c
	}

	flag.Visit(func(fl *flag.Flag) {

		switch fl.Name {
		case "input":
			cfg.Input = input
		case "output-dir":
			cfg.OutputDir = output_dir
		case "writer-uri":
			cfg.WriterURI = writer_uri
		case "name":
			cfg.Name = name
		case "recursive":
			cfg.Gather.Recursive = recursive
		case "fingerprint":
			cfg.Gather.Fingerprint = fingerprint
		case "imagehashes":
			cfg.Gather.ImageHashes = imagehashes
		case "exif-timestamps":
			cfg.Gather.ExifTimestamps = exif_timestamps
		case "dedupe":
			cfg.Gather.Dedupe = dedupe
		case "lookup":
			cfg.Lookup.Sources = lookup
		case "strict":
			cfg.Strict = strict
		case "verbose":
			cfg.Verbose = verbose
		}
	})

	if cfg.Verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
		slog.Debug("Verbose logging enabled")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	p, err := process.NewProcessor(ctx, cfg)

	if err != nil {
		log.Fatalf("Failed to create processor, %v", err)
	}

	defer p.Close()

	summary, err := p.Run(ctx)

	if summary != nil {
		summary.Log(slog.Default())
	}

	if err != nil {
		log.Fatalf("Failed to process photos, %v", err)
	}
}
