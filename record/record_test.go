package record

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/sfomuseum/go-photos-geojson/gps"
)

func TestNew(t *testing.T) {

	coords := &gps.Coordinates{Latitude: 44.5646, Longitude: -123.2620}

	r, err := New("20190124_153045.jpg", coords, "2019-01-24T15:30:45")

	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if r.Longitude != -123.2620 || r.Latitude != 44.5646 {
		t.Fatalf("unexpected coordinates %v, %v", r.Longitude, r.Latitude)
	}
}

func TestNewValidation(t *testing.T) {

	tests := []struct {
		name   string
		image  string
		coords *gps.Coordinates
		ts     string
		field  string
	}{
		{"empty image", "", &gps.Coordinates{Latitude: 1, Longitude: 1}, "2019-01-24T15:30:45", "image"},
		{"nil coords", "a.jpg", nil, "2019-01-24T15:30:45", "coordinates"},
		{"latitude", "a.jpg", &gps.Coordinates{Latitude: 91, Longitude: 1}, "2019-01-24T15:30:45", "latitude"},
		{"longitude", "a.jpg", &gps.Coordinates{Latitude: 1, Longitude: -180.5}, "2019-01-24T15:30:45", "longitude"},
		{"nan", "a.jpg", &gps.Coordinates{Latitude: math.NaN(), Longitude: 1}, "2019-01-24T15:30:45", "latitude"},
		{"timestamp", "a.jpg", &gps.Coordinates{Latitude: 1, Longitude: 1}, "0190-12-4T_1:53:04", "timestamp"},
	}

	for _, tt := range tests {

		t.Run(tt.name, func(t *testing.T) {

			_, err := New(tt.image, tt.coords, tt.ts)

			var v *ValidationError

			if !errors.As(err, &v) {
				t.Fatalf("expected ValidationError, got %v", err)
			}

			if v.Field != tt.field {
				t.Fatalf("field=%s want %s", v.Field, tt.field)
			}
		})
	}
}

func TestWriteCSV(t *testing.T) {

	r, err := New("20190124_153045.jpg", &gps.Coordinates{Latitude: 44.5646, Longitude: -123.262}, "2019-01-24T15:30:45")

	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	var buf bytes.Buffer

	err = WriteCSV(&buf, []*PhotoRecord{r})

	if err != nil {
		t.Fatalf("WriteCSV() error: %v", err)
	}

	want := "image,longitude,latitude,timestamp\n20190124_153045.jpg,-123.262,44.5646,2019-01-24T15:30:45\n"

	if buf.String() != want {
		t.Fatalf("WriteCSV()=%q want %q", buf.String(), want)
	}
}

func TestReadCSV(t *testing.T) {

	doc := strings.Join([]string{
		"image,longitude,latitude,timestamp",
		"20190124_153045.jpg,-123.262,44.5646,2019-01-24T15:30:45",
		"bad_lon.jpg,west,44.5646,2019-01-24T15:30:45",
		"short.jpg,1.0",
		"bad_ts.jpg,1.0,2.0,0190-12-4T_1:53:04",
		"IMG_20190125_101010.jpg,2.5,-3.25,2019-01-25T10:10:10",
	}, "\n")

	records, row_errors, err := ReadCSV(strings.NewReader(doc))

	if err != nil {
		t.Fatalf("ReadCSV() error: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("records=%d want 2", len(records))
	}

	if records[1].Image != "IMG_20190125_101010.jpg" || records[1].Latitude != -3.25 {
		t.Fatalf("unexpected record %+v", records[1])
	}

	if len(row_errors) != 3 {
		t.Fatalf("row errors=%d want 3", len(row_errors))
	}

	lines := []int{3, 4, 5}

	for i, e := range row_errors {
		if e.Line != lines[i] {
			t.Fatalf("row error %d line=%d want %d", i, e.Line, lines[i])
		}
	}

	var v *ValidationError

	if !errors.As(row_errors[0], &v) || v.Field != "longitude" {
		t.Fatalf("expected longitude validation error, got %v", row_errors[0])
	}
}

func TestReadCSVHeader(t *testing.T) {

	_, _, err := ReadCSV(strings.NewReader("name,lon,lat,time\n"))

	if err == nil {
		t.Fatalf("expected header error")
	}
}
