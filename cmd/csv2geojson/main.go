// csv2geojson is a command line tool that converts a CSV file produced by photos2geojson (image, longitude,
// latitude and timestamp columns) in to a GeoJSON FeatureCollection.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/sfomuseum/go-photos-geojson/common"
	"github.com/sfomuseum/go-photos-geojson/feature"
	"github.com/sfomuseum/go-photos-geojson/operations/process"
)

func main() {

	var csv_path string
	var output_dir string
	var writer_uri string
	var name string
	var crs bool
	var pretty bool
	var verbose bool

	flag.StringVar(&csv_path, "csv", "outputs/gpsphoto_output.csv", "The path of the CSV file to convert.")
	flag.StringVar(&output_dir, "output-dir", "", "The directory where the GeoJSON file is written. Defaults to the directory containing -csv.")
	flag.StringVar(&writer_uri, "writer-uri", "", "An optional whosonfirst/go-writer URI (for example stdout://) that overrides -output-dir.")
	flag.StringVar(&name, "name", "", "The base name, sans extension, of the GeoJSON file. Defaults to the base name of -csv.")
	flag.BoolVar(&crs, "crs", true, "Annotate the GeoJSON document with a named CRS84 coordinate reference system.")
	flag.BoolVar(&pretty, "pretty", true, "Indent the GeoJSON output.")
	flag.BoolVar(&verbose, "verbose", false, "Enable verbose (debug) logging.")

	flag.Parse()

	if verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
		slog.Debug("Verbose logging enabled")
	}

	ctx := context.Background()

	csv_dir := filepath.Dir(csv_path)
	csv_fname := filepath.Base(csv_path)

	if name == "" {
		name = strings.TrimSuffix(csv_fname, filepath.Ext(csv_fname))
	}

	if output_dir == "" {
		output_dir = csv_dir
	}

	if writer_uri == "" {
		writer_uri = output_dir
	}

	wr, err := common.NewWriter(ctx, writer_uri)

	if err != nil {
		log.Fatal(err)
	}

	opts := &process.ConvertOptions{
		ReaderURI:  csv_dir,
		Path:       csv_fname,
		Writer:     wr,
		OutputPath: name + ".geojson",
		ExportOptions: &feature.ExportOptions{
			Name:   name,
			CRS:    crs,
			Pretty: pretty,
		},
	}

	rsp, err := process.Convert(ctx, opts)

	if err != nil {
		log.Fatalf("Failed to convert %s, %v", csv_path, err)
	}

	slog.Info("Complete!", "written", rsp.Written, "skipped", len(rsp.RowErrors))
}
