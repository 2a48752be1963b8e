package gps

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrNoGPS signals that an image does not carry GPS metadata. This is an expected outcome and
// callers should skip the image rather than treat it as a failure.
var ErrNoGPS = errors.New("No GPS data")

// MalformedError is returned when GPS metadata is present but can not be decoded.
type MalformedError struct {
	// The name of the EXIF field (or derived value) that could not be decoded.
	Field string
	Err   error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("Malformed GPS metadata for %s, %v", e.Field, e.Err)
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

// IsNoGPS reports whether 'err' indicates absent GPS metadata.
func IsNoGPS(err error) bool {
	return errors.Is(err, ErrNoGPS)
}

// IsMalformed reports whether 'err' indicates GPS metadata that is present but malformed.
func IsMalformed(err error) bool {
	var m *MalformedError
	return errors.As(err, &m)
}

// type Hemispheres defines the reference letters for the positive and negative halves of an axis.
type Hemispheres struct {
	Name     string
	Positive string
	Negative string
	Max      float64
}

// Latitude references: north is positive, south is negative.
var Latitude = Hemispheres{
	Name:     "latitude",
	Positive: "N",
	Negative: "S",
	Max:      90.0,
}

// Longitude references: east is positive, west is negative.
var Longitude = Hemispheres{
	Name:     "longitude",
	Positive: "E",
	Negative: "W",
	Max:      180.0,
}

// type Coordinates stores a signed decimal latitude, longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DecodeCoordinate returns the signed decimal value of 't', negated when 'ref' is the negative
// hemisphere of 'h'. An empty or unknown reference is malformed.
func DecodeCoordinate(t RationalTriple, ref string, h Hemispheres) (float64, error) {

	ref = normalizeRef(ref)

	if ref == "" {
		return 0.0, &MalformedError{Field: h.Name + " reference", Err: errors.New("missing hemisphere reference")}
	}

	if ref != h.Positive && ref != h.Negative {
		return 0.0, &MalformedError{Field: h.Name + " reference", Err: fmt.Errorf("unknown hemisphere reference '%s'", ref)}
	}

	v, err := DecodeDegrees(t)

	if err != nil {
		return 0.0, &MalformedError{Field: h.Name, Err: err}
	}

	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0.0 || v > h.Max {
		return 0.0, &MalformedError{Field: h.Name, Err: fmt.Errorf("%f is outside the valid range", v)}
	}

	// no negative zero
	if ref == h.Negative && v != 0.0 {
		v = -v
	}

	return v, nil
}

// EncodeCoordinate returns the RationalTriple and hemisphere reference for the signed decimal value 'v'.
func EncodeCoordinate(v float64, h Hemispheres) (RationalTriple, string) {

	ref := h.Positive

	if v < 0.0 {
		ref = h.Negative
	}

	return EncodeDegrees(v), ref
}

func normalizeRef(ref string) string {
	ref = strings.Trim(ref, "\x00 \t\"")
	return strings.ToUpper(ref)
}
