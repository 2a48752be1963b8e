package feature

import (
	"fmt"

	"github.com/paulmach/orb/geojson"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// CRS84 is the OGC name for WGS-84 (EPSG:4326) with longitude, latitude axis order.
const CRS84 = "urn:ogc:def:crs:OGC:1.3:CRS84"

// ExportOptions control how a FeatureCollection is encoded.
type ExportOptions struct {
	// An optional name assigned to the top-level "name" member (typically the output filename sans extension).
	Name string
	// Assign a top-level named "crs" member for CRS84.
	CRS bool
	// Indent the output.
	Pretty bool
}

// DefaultExportOptions returns an ExportOptions instance that writes a named CRS and indented output.
func DefaultExportOptions() *ExportOptions {

	opts := &ExportOptions{
		CRS:    true,
		Pretty: true,
	}

	return opts
}

// Export encodes 'fc' as GeoJSON, annotated per 'opts'.
func Export(fc *geojson.FeatureCollection, opts *ExportOptions) ([]byte, error) {

	body, err := fc.MarshalJSON()

	if err != nil {
		return nil, fmt.Errorf("Failed to marshal feature collection, %w", err)
	}

	if opts == nil {
		return body, nil
	}

	type update struct {
		path  string
		value interface{}
	}

	// name, then crs
	updates := make([]update, 0, 2)

	if opts.Name != "" {
		updates = append(updates, update{"name", opts.Name})
	}

	if opts.CRS {

		crs := map[string]interface{}{
			"type": "name",
			"properties": map[string]interface{}{
				"name": CRS84,
			},
		}

		updates = append(updates, update{"crs", crs})
	}

	for _, u := range updates {

		body, err = sjson.SetBytes(body, u.path, u.value)

		if err != nil {
			return nil, fmt.Errorf("Failed to assign %s property, %w", u.path, err)
		}
	}

	if opts.Pretty {
		body = pretty.Pretty(body)
	}

	return body, nil
}

// Decode parses 'body' as a GeoJSON FeatureCollection. Documents with a named "crs" other than CRS84
// (or its EPSG:4326 aliases) are rejected.
func Decode(body []byte) (*geojson.FeatureCollection, error) {

	type_rsp := gjson.GetBytes(body, "type")

	if type_rsp.String() != "FeatureCollection" {
		return nil, fmt.Errorf("Unexpected document type '%s'", type_rsp.String())
	}

	crs_rsp := gjson.GetBytes(body, "crs.properties.name")

	if crs_rsp.Exists() {

		switch crs_rsp.String() {
		case CRS84, "EPSG:4326", "urn:ogc:def:crs:EPSG::4326":
			// pass
		default:
			return nil, fmt.Errorf("Unsupported CRS '%s'", crs_rsp.String())
		}
	}

	fc, err := geojson.UnmarshalFeatureCollection(body)

	if err != nil {
		return nil, fmt.Errorf("Failed to unmarshal feature collection, %w", err)
	}

	return fc, nil
}
