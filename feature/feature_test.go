package feature

import (
	"bytes"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/sfomuseum/go-photos-geojson/gps"
	"github.com/sfomuseum/go-photos-geojson/record"
	"github.com/tidwall/gjson"
)

func testRecords(t *testing.T) []*record.PhotoRecord {

	t.Helper()

	r1, err := record.New("20190124_153045.jpg", &gps.Coordinates{Latitude: 44.5646, Longitude: -123.2620}, "2019-01-24T15:30:45")

	if err != nil {
		t.Fatalf("record.New() error: %v", err)
	}

	r2, err := record.New("IMG_20190125_101010.jpg", &gps.Coordinates{Latitude: -33.8688, Longitude: 151.2093}, "2019-01-25T10:10:10")

	if err != nil {
		t.Fatalf("record.New() error: %v", err)
	}

	return []*record.PhotoRecord{r1, r2}
}

func TestNewFeature(t *testing.T) {

	records := testRecords(t)

	f := NewFeature(records[0], map[string]interface{}{
		"image":             "clobbered.jpg",
		"media:fingerprint": "abc",
	})

	pt, ok := f.Geometry.(orb.Point)

	if !ok {
		t.Fatalf("expected Point geometry, got %T", f.Geometry)
	}

	if math.Abs(pt.Lon()-(-123.2620)) > 1e-9 || math.Abs(pt.Lat()-44.5646) > 1e-9 {
		t.Fatalf("unexpected point %v", pt)
	}

	if f.Properties.MustString("image") != "20190124_153045.jpg" {
		t.Fatalf("image property was replaced by extra properties")
	}

	if f.Properties.MustString("media:fingerprint") != "abc" {
		t.Fatalf("missing extra property")
	}
}

func TestExport(t *testing.T) {

	records := testRecords(t)
	fc := NewFeatureCollection(records, nil)

	opts := DefaultExportOptions()
	opts.Name = "gpsphoto_output"

	body, err := Export(fc, opts)

	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	checks := map[string]string{
		"type":                              "FeatureCollection",
		"name":                              "gpsphoto_output",
		"crs.properties.name":               CRS84,
		"features.0.geometry.type":          "Point",
		"features.0.properties.image":       "20190124_153045.jpg",
		"features.0.properties.timestamp":   "2019-01-24T15:30:45",
		"features.1.properties.image":       "IMG_20190125_101010.jpg",
		"features.1.geometry.coordinates.0": "151.2093",
		"features.1.geometry.coordinates.1": "-33.8688",
	}

	for path, want := range checks {

		got := gjson.GetBytes(body, path)

		if got.String() != want {
			t.Fatalf("%s=%q want %q", path, got.String(), want)
		}
	}

	if gjson.GetBytes(body, "features.#").Int() != 2 {
		t.Fatalf("expected 2 features")
	}

	fc2, err := Decode(body)

	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	decoded, err := Records(fc2)

	if err != nil {
		t.Fatalf("Records() error: %v", err)
	}

	if len(decoded) != 2 || *decoded[0] != *records[0] || *decoded[1] != *records[1] {
		t.Fatalf("records did not survive export and decode")
	}
}

func TestExportStable(t *testing.T) {

	records := testRecords(t)
	fc := NewFeatureCollection(records, nil)

	opts := DefaultExportOptions()
	opts.Name = "gpsphoto_output"

	first, err := Export(fc, opts)

	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	name_idx := bytes.Index(first, []byte(`"name": "gpsphoto_output"`))
	crs_idx := bytes.Index(first, []byte(`"crs"`))

	if name_idx == -1 || crs_idx == -1 || name_idx > crs_idx {
		t.Fatalf("expected name before crs, got %s", first)
	}

	for i := 0; i < 50; i++ {

		body, err := Export(fc, opts)

		if err != nil {
			t.Fatalf("Export() error: %v", err)
		}

		if !bytes.Equal(body, first) {
			t.Fatalf("Export() output changed between calls")
		}
	}
}

func TestExportEmpty(t *testing.T) {

	body, err := Export(NewFeatureCollection(nil, nil), nil)

	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	features := gjson.GetBytes(body, "features")

	if !features.IsArray() || len(features.Array()) != 0 {
		t.Fatalf("expected an empty features array, got %s", string(body))
	}
}

func TestDecodeUnsupportedCRS(t *testing.T) {

	body := []byte(`{"type":"FeatureCollection","crs":{"type":"name","properties":{"name":"EPSG:3857"}},"features":[]}`)

	_, err := Decode(body)

	if err == nil {
		t.Fatalf("expected CRS error")
	}
}
