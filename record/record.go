// Package record defines the PhotoRecord type along with CSV encoding and decoding for lists of records.
package record

import (
	"fmt"
	"math"
	"time"

	"github.com/sfomuseum/go-photos-geojson/gps"
	"github.com/sfomuseum/go-photos-geojson/timestamp"
)

// type PhotoRecord is a photo that has both a valid coordinate pair and a capture timestamp. Records
// should be created with New and not modified afterwards.
type PhotoRecord struct {
	// The (normalized) filename of the photo.
	Image     string  `json:"image"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	// YYYY-MM-DDTHH:MM:SS, local time.
	Timestamp string `json:"timestamp"`
}

// ValidationError is returned by New when a field fails validation.
type ValidationError struct {
	Field string
	Value interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Invalid %s: %v", e.Field, e.Value)
}

// New returns a validated PhotoRecord.
func New(image string, coords *gps.Coordinates, ts string) (*PhotoRecord, error) {

	if image == "" {
		return nil, &ValidationError{Field: "image", Value: image}
	}

	if coords == nil {
		return nil, &ValidationError{Field: "coordinates", Value: nil}
	}

	if !inRange(coords.Latitude, gps.Latitude.Max) {
		return nil, &ValidationError{Field: "latitude", Value: coords.Latitude}
	}

	if !inRange(coords.Longitude, gps.Longitude.Max) {
		return nil, &ValidationError{Field: "longitude", Value: coords.Longitude}
	}

	_, err := time.Parse(timestamp.Format, ts)

	if err != nil {
		return nil, &ValidationError{Field: "timestamp", Value: ts}
	}

	r := &PhotoRecord{
		Image:     image,
		Longitude: coords.Longitude,
		Latitude:  coords.Latitude,
		Timestamp: ts,
	}

	return r, nil
}

// Coordinates returns the record's position.
func (r *PhotoRecord) Coordinates() *gps.Coordinates {

	return &gps.Coordinates{
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	}
}

func inRange(v float64, max float64) bool {

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}

	return v >= -max && v <= max
}
