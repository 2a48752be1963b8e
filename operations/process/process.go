// Package process runs the photos to GeoJSON pipeline: gather records from a bucket of photos, then
// write them out as CSV and as a GeoJSON FeatureCollection.
package process

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/sfomuseum/go-photos-geojson/common"
	"github.com/sfomuseum/go-photos-geojson/config"
	"github.com/sfomuseum/go-photos-geojson/feature"
	"github.com/sfomuseum/go-photos-geojson/lookup"
	"github.com/sfomuseum/go-photos-geojson/operations/gather"
	"github.com/sfomuseum/go-photos-geojson/record"
	"github.com/whosonfirst/go-writer/v3"
	"gocloud.dev/blob"
)

// Processor provides a struct for converting a bucket of photos in to CSV and GeoJSON documents.
type Processor struct {
	// A valid gocloud.dev/blob Bucket where photos are read from.
	Bucket *blob.Bucket
	// A valid whosonfirst/go-writer Writer where output files are written.
	Writer writer.Writer
	// The base name, sans extension, of output files.
	Name string
	// Write a CSV file in addition to GeoJSON.
	CSV bool
	// Options for encoding the GeoJSON document.
	ExportOptions *feature.ExportOptions
	// Options for gathering photos. The Callback property is assigned by Run. A non-nil Seen map is copied
	// at the start of each Run, so repeated runs start from the same set of known fingerprints.
	GatherOptions *gather.GatherPhotosOptions
	// Return an error from Run if any photos had malformed GPS metadata.
	Strict bool
}

// NewProcessor returns a Processor configured by 'cfg'. It returns an error if the input directory is
// missing or can not be opened.
func NewProcessor(ctx context.Context, cfg config.Config) (*Processor, error) {

	err := cfg.Validate()

	if err != nil {
		return nil, fmt.Errorf("Invalid config, %w", err)
	}

	bucket, err := common.OpenDirectoryBucket(ctx, cfg.Input)

	if err != nil {
		return nil, err
	}

	writer_uri := cfg.WriterURI

	if writer_uri == "" {
		writer_uri = cfg.OutputDir
	}

	wr, err := common.NewWriter(ctx, writer_uri)

	if err != nil {
		bucket.Close()
		return nil, err
	}

	gather_opts := &gather.GatherPhotosOptions{
		Recursive:      cfg.Gather.Recursive,
		Fingerprint:    cfg.Gather.Fingerprint,
		ImageHashes:    cfg.Gather.ImageHashes,
		ExifTimestamps: cfg.Gather.ExifTimestamps,
		Dedupe:         cfg.Gather.Dedupe,
	}

	if len(cfg.Lookup.Sources) > 0 {

		seen, err := newLookupMap(ctx, cfg.Lookup.Sources)

		if err != nil {
			bucket.Close()
			return nil, err
		}

		gather_opts.Dedupe = true
		gather_opts.Seen = seen
	}

	export_opts := &feature.ExportOptions{
		Name:   cfg.Name,
		CRS:    cfg.Output.CRS,
		Pretty: cfg.Output.Pretty,
	}

	p := &Processor{
		Bucket:        bucket,
		Writer:        wr,
		Name:          cfg.Name,
		CSV:           cfg.Output.CSV,
		ExportOptions: export_opts,
		GatherOptions: gather_opts,
		Strict:        cfg.Strict,
	}

	return p, nil
}

// Close closes the underlying bucket.
func (p *Processor) Close() error {
	return p.Bucket.Close()
}

// Run gathers every photo in p.Bucket and writes "{Name}.csv" (if enabled) and "{Name}.geojson" using
// p.Writer. Photos without GPS data or a recognizable timestamp are skipped and counted in the returned
// Summary; they never stop the run.
func (p *Processor) Run(ctx context.Context) (*Summary, error) {

	summary := NewSummary()

	records := make([]*record.PhotoRecord, 0)
	extras := make(map[*record.PhotoRecord]map[string]interface{})

	cb := func(ctx context.Context, rsp *gather.GatherPhotoResponse) error {

		summary.Add(rsp)

		logger := slog.Default()
		logger = logger.With("path", rsp.Path, "status", rsp.Status)

		switch rsp.Status {
		case gather.StatusOK:
			// pass
		case gather.StatusIgnored, gather.StatusNoGPS:
			logger.Debug("Skipping photo", "reason", rsp.Message)
			return nil
		case gather.StatusMalformed, gather.StatusFailed:
			logger.Warn("Skipping photo", "reason", rsp.Message)
			return nil
		default:
			logger.Info("Skipping photo", "reason", rsp.Message)
			return nil
		}

		records = append(records, rsp.Record)

		props := extraProperties(rsp)

		if len(props) > 0 {
			extras[rsp.Record] = props
		}

		return nil
	}

	gather_opts := *p.GatherOptions
	gather_opts.Callback = cb

	if gather_opts.Seen != nil {
		gather_opts.Seen = copyMap(gather_opts.Seen)
	}

	err := gather.GatherPhotosWithOptions(ctx, p.Bucket, &gather_opts)

	if err != nil {
		return summary, fmt.Errorf("Failed to gather photos, %w", err)
	}

	summary.Written = len(records)

	if p.CSV {

		var buf bytes.Buffer

		err := record.WriteCSV(&buf, records)

		if err != nil {
			return summary, fmt.Errorf("Failed to encode CSV, %w", err)
		}

		csv_path := p.Name + ".csv"

		err = common.WriteBytes(ctx, p.Writer, csv_path, buf.Bytes())

		if err != nil {
			return summary, err
		}

		slog.Info("CSV file successfully written from images' GPS.", "path", p.Writer.WriterURI(ctx, csv_path), "records", len(records))
	}

	extra_func := func(r *record.PhotoRecord) map[string]interface{} {
		return extras[r]
	}

	fc := feature.NewFeatureCollection(records, extra_func)

	body, err := feature.Export(fc, p.ExportOptions)

	if err != nil {
		return summary, fmt.Errorf("Failed to export GeoJSON, %w", err)
	}

	geojson_path := p.Name + ".geojson"

	err = common.WriteBytes(ctx, p.Writer, geojson_path, body)

	if err != nil {
		return summary, err
	}

	slog.Info("GeoJSON file successfully created.", "path", p.Writer.WriterURI(ctx, geojson_path), "features", len(fc.Features))

	err = p.Writer.Flush(ctx)

	if err != nil {
		return summary, fmt.Errorf("Failed to flush writer, %w", err)
	}

	if p.Strict && summary.Malformed > 0 {
		return summary, fmt.Errorf("%d photo(s) have malformed GPS metadata: %s", summary.Malformed, strings.Join(summary.MalformedPaths, ", "))
	}

	return summary, nil
}

func extraProperties(rsp *gather.GatherPhotoResponse) map[string]interface{} {

	props := make(map[string]interface{})

	if rsp.Fingerprint != "" {
		props[lookup.FingerprintProperty] = rsp.Fingerprint
	}

	for _, h := range rsp.ImageHashes {
		k := fmt.Sprintf("media:imagehash_%s", h.Approach)
		props[k] = h.Hash
	}

	return props
}

func copyMap(m *sync.Map) *sync.Map {

	c := new(sync.Map)

	m.Range(func(k interface{}, v interface{}) bool {
		c.Store(k, v)
		return true
	})

	return c
}

func newLookupMap(ctx context.Context, sources []string) (*sync.Map, error) {

	looker_uppers := make([]lookup.LookerUpper, len(sources))

	for i, src := range sources {

		src_uri, err := common.DirectoryURI("file", src)

		if err != nil {
			return nil, err
		}

		l, err := lookup.NewBlobLookerUpper(ctx, src_uri)

		if err != nil {
			return nil, err
		}

		looker_uppers[i] = l
	}

	append_funcs := []lookup.AppendLookupFunc{
		lookup.FingerprintAppendLookupFunc,
	}

	seen, err := lookup.NewLookupMap(ctx, looker_uppers, append_funcs)

	if err != nil {
		return nil, fmt.Errorf("Failed to build fingerprint lookup, %w", err)
	}

	return seen, nil
}
