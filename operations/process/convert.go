package process

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/sfomuseum/go-photos-geojson/common"
	"github.com/sfomuseum/go-photos-geojson/feature"
	"github.com/sfomuseum/go-photos-geojson/record"
	"github.com/whosonfirst/go-writer/v3"
)

// ConvertOptions defines options for converting an existing CSV document in to GeoJSON.
type ConvertOptions struct {
	// A valid whosonfirst/go-reader URI, or a local directory, where the CSV document is read from.
	ReaderURI string
	// The path of the CSV document relative to ReaderURI.
	Path string
	// A valid whosonfirst/go-writer Writer where the GeoJSON document is written.
	Writer writer.Writer
	// The path of the GeoJSON document relative to Writer.
	OutputPath string
	// Options for encoding the GeoJSON document.
	ExportOptions *feature.ExportOptions
}

// ConvertResponse reports the outcome of Convert.
type ConvertResponse struct {
	Written   int                `json:"written"`
	RowErrors []*record.RowError `json:"-"`
}

// Convert reads a CSV document produced by Processor.Run (or anything with the same header) and writes its
// rows as a GeoJSON FeatureCollection. Rows that can not be parsed are logged, reported in the response and
// left out of the output.
func Convert(ctx context.Context, opts *ConvertOptions) (*ConvertResponse, error) {

	body, err := common.ReadFile(ctx, opts.ReaderURI, opts.Path)

	if err != nil {
		return nil, err
	}

	records, row_errors, err := record.ReadCSV(bytes.NewReader(body))

	if err != nil {
		return nil, fmt.Errorf("Failed to read %s, %w", opts.Path, err)
	}

	for _, e := range row_errors {
		slog.Warn("Skipping CSV row", "path", opts.Path, "line", e.Line, "error", e.Err)
	}

	fc := feature.NewFeatureCollection(records, nil)

	enc, err := feature.Export(fc, opts.ExportOptions)

	if err != nil {
		return nil, fmt.Errorf("Failed to export GeoJSON, %w", err)
	}

	err = common.WriteBytes(ctx, opts.Writer, opts.OutputPath, enc)

	if err != nil {
		return nil, err
	}

	err = opts.Writer.Flush(ctx)

	if err != nil {
		return nil, fmt.Errorf("Failed to flush writer, %w", err)
	}

	slog.Info("GeoJSON file successfully created from CSV.", "path", opts.Writer.WriterURI(ctx, opts.OutputPath), "features", len(records), "skipped", len(row_errors))

	rsp := &ConvertResponse{
		Written:   len(records),
		RowErrors: row_errors,
	}

	return rsp, nil
}
