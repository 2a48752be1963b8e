package gps

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
	"github.com/rwcarlsen/goexif/tiff"
)

var register_parsers sync.Once

// DecodeExif decodes the EXIF data in 'r'. Images without an EXIF segment return an error wrapping
// ErrNoGPS. Files too short to hold an image header return a plain error (neither ErrNoGPS nor
// *MalformedError). Anything else that goexif can not make sense of is returned as a *MalformedError.
func DecodeExif(r io.Reader) (*exif.Exif, error) {

	register_parsers.Do(func() {
		exif.RegisterParsers(mknote.All...)
	})

	header := make([]byte, 4)

	_, err := io.ReadFull(r, header)

	if err != nil {
		return nil, fmt.Errorf("Failed to read image header, %w", err)
	}

	x, err := exif.Decode(io.MultiReader(bytes.NewReader(header), r))

	if err == nil {
		return x, nil
	}

	// Non-critical errors (for example a broken maker note) still leave us with usable GPS tags
	if x != nil && !exif.IsCriticalError(err) {
		return x, nil
	}

	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w, image has no EXIF data", ErrNoGPS)
	}

	return nil, &MalformedError{Field: "exif", Err: err}
}

// FromExif derives signed decimal Coordinates from the GPS tags in 'x'. If either the latitude or
// longitude tag is absent the error wraps ErrNoGPS. Tags that are present but can not be decoded
// (including a missing hemisphere reference) return a *MalformedError.
func FromExif(x *exif.Exif) (*Coordinates, error) {

	lat_tag, err := x.Get(exif.GPSLatitude)

	if err != nil {
		return nil, absentOrMalformed(exif.GPSLatitude, err)
	}

	lon_tag, err := x.Get(exif.GPSLongitude)

	if err != nil {
		return nil, absentOrMalformed(exif.GPSLongitude, err)
	}

	lat, err := decodeTags(x, lat_tag, exif.GPSLatitudeRef, Latitude)

	if err != nil {
		return nil, err
	}

	lon, err := decodeTags(x, lon_tag, exif.GPSLongitudeRef, Longitude)

	if err != nil {
		return nil, err
	}

	c := &Coordinates{
		Latitude:  lat,
		Longitude: lon,
	}

	return c, nil
}

// TripleFromTag reads the three RATIONAL values stored in 't'.
func TripleFromTag(t *tiff.Tag) (RationalTriple, error) {

	var triple RationalTriple

	if t.Count != 3 {
		return triple, fmt.Errorf("expected 3 rational values, got %d", t.Count)
	}

	for i := 0; i < 3; i++ {

		num, den, err := t.Rat2(i)

		if err != nil {
			return triple, fmt.Errorf("Failed to read rational %d, %w", i, err)
		}

		triple[i] = Rational{
			Numerator:   num,
			Denominator: den,
		}
	}

	return triple, nil
}

func decodeTags(x *exif.Exif, value_tag *tiff.Tag, ref_field exif.FieldName, h Hemispheres) (float64, error) {

	triple, err := TripleFromTag(value_tag)

	if err != nil {
		return 0.0, &MalformedError{Field: h.Name, Err: err}
	}

	ref_tag, err := x.Get(ref_field)

	if err != nil {
		return 0.0, &MalformedError{Field: string(ref_field), Err: err}
	}

	ref, err := ref_tag.StringVal()

	if err != nil {
		return 0.0, &MalformedError{Field: string(ref_field), Err: err}
	}

	return DecodeCoordinate(triple, ref, h)
}

func absentOrMalformed(field exif.FieldName, err error) error {

	var not_present exif.TagNotPresentError

	if errors.As(err, &not_present) {
		return fmt.Errorf("%w, missing %s", ErrNoGPS, field)
	}

	return &MalformedError{Field: string(field), Err: err}
}
