package record

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sfomuseum/go-photos-geojson/gps"
)

// Header is the first row of every CSV document.
var Header = []string{"image", "longitude", "latitude", "timestamp"}

// RowError describes a CSV row that could not be turned in to a PhotoRecord.
type RowError struct {
	// 1-based line number in the CSV document.
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// WriteCSV writes the header followed by one row per record to 'wr'.
func WriteCSV(wr io.Writer, records []*PhotoRecord) error {

	csv_wr := csv.NewWriter(wr)

	err := csv_wr.Write(Header)

	if err != nil {
		return fmt.Errorf("Failed to write header, %w", err)
	}

	for _, r := range records {

		row := []string{
			r.Image,
			strconv.FormatFloat(r.Longitude, 'f', -1, 64),
			strconv.FormatFloat(r.Latitude, 'f', -1, 64),
			r.Timestamp,
		}

		err := csv_wr.Write(row)

		if err != nil {
			return fmt.Errorf("Failed to write row for %s, %w", r.Image, err)
		}
	}

	csv_wr.Flush()
	return csv_wr.Error()
}

// ReadCSV reads a document written by WriteCSV. Rows that can not be parsed or fail validation are
// returned as *RowError values rather than silently dropped. A missing or unexpected header is fatal.
func ReadCSV(r io.Reader) ([]*PhotoRecord, []*RowError, error) {

	csv_r := csv.NewReader(r)
	csv_r.FieldsPerRecord = -1

	header, err := csv_r.Read()

	if err != nil {
		return nil, nil, fmt.Errorf("Failed to read header, %w", err)
	}

	if strings.Join(header, ",") != strings.Join(Header, ",") {
		return nil, nil, fmt.Errorf("Unexpected header '%s'", strings.Join(header, ","))
	}

	records := make([]*PhotoRecord, 0)
	row_errors := make([]*RowError, 0)

	for {

		row, err := csv_r.Read()

		if err == io.EOF {
			break
		}

		if err != nil {

			var parse_err *csv.ParseError

			if errors.As(err, &parse_err) {
				row_errors = append(row_errors, &RowError{Line: parse_err.StartLine, Err: err})
				continue
			}

			return nil, nil, fmt.Errorf("Failed to read CSV, %w", err)
		}

		line, _ := csv_r.FieldPos(0)

		rec, err := parseRow(row)

		if err != nil {
			row_errors = append(row_errors, &RowError{Line: line, Err: err})
			continue
		}

		records = append(records, rec)
	}

	return records, row_errors, nil
}

func parseRow(row []string) (*PhotoRecord, error) {

	if len(row) != len(Header) {
		return nil, fmt.Errorf("expected %d fields, got %d", len(Header), len(row))
	}

	lon, err := strconv.ParseFloat(row[1], 64)

	if err != nil {
		return nil, &ValidationError{Field: "longitude", Value: row[1]}
	}

	lat, err := strconv.ParseFloat(row[2], 64)

	if err != nil {
		return nil, &ValidationError{Field: "latitude", Value: row[2]}
	}

	coords := &gps.Coordinates{
		Latitude:  lat,
		Longitude: lon,
	}

	return New(row[0], coords, row[3])
}
