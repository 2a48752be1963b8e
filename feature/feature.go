// Package feature turns PhotoRecord instances in to GeoJSON Point features and FeatureCollection documents.
package feature

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/sfomuseum/go-photos-geojson/gps"
	"github.com/sfomuseum/go-photos-geojson/record"
)

// Property names assigned to every feature.
const (
	ImageProperty     = "image"
	TimestampProperty = "timestamp"
)

// ExtraPropertiesFunc returns additional properties to assign to the feature for 'r'.
type ExtraPropertiesFunc func(r *record.PhotoRecord) map[string]interface{}

// NewFeature returns a Point feature at [longitude, latitude] with "image" and "timestamp" properties.
// Keys in 'extra' are added as-is but never replace "image" or "timestamp".
func NewFeature(r *record.PhotoRecord, extra map[string]interface{}) *geojson.Feature {

	pt := orb.Point{r.Longitude, r.Latitude}
	f := geojson.NewFeature(pt)

	for k, v := range extra {
		f.Properties[k] = v
	}

	f.Properties[ImageProperty] = r.Image
	f.Properties[TimestampProperty] = r.Timestamp

	return f
}

// NewFeatureCollection returns a FeatureCollection with one feature per record, in order.
func NewFeatureCollection(records []*record.PhotoRecord, extra_func ExtraPropertiesFunc) *geojson.FeatureCollection {

	fc := geojson.NewFeatureCollection()

	for _, r := range records {

		var extra map[string]interface{}

		if extra_func != nil {
			extra = extra_func(r)
		}

		fc.Append(NewFeature(r, extra))
	}

	return fc
}

// Records converts the Point features in 'fc' back in to PhotoRecord instances.
func Records(fc *geojson.FeatureCollection) ([]*record.PhotoRecord, error) {

	records := make([]*record.PhotoRecord, len(fc.Features))

	for i, f := range fc.Features {

		pt, ok := f.Geometry.(orb.Point)

		if !ok {
			return nil, fmt.Errorf("Feature at offset %d is not a Point", i)
		}

		coords := &gps.Coordinates{
			Latitude:  pt.Lat(),
			Longitude: pt.Lon(),
		}

		image := f.Properties.MustString(ImageProperty, "")
		ts := f.Properties.MustString(TimestampProperty, "")

		r, err := record.New(image, coords, ts)

		if err != nil {
			return nil, fmt.Errorf("Failed to derive record for feature at offset %d, %w", i, err)
		}

		records[i] = r
	}

	return records, nil
}
