// Package timestamp derives capture timestamps from photo filenames (and optionally EXIF DateTimeOriginal tags).
package timestamp

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// Format is the layout of derived timestamps: ISO 8601, local time, no timezone.
const Format = "2006-01-02T15:04:05"

// exifFormat is the layout of EXIF DateTime tags.
const exifFormat = "2006:01:02 15:04:05"

// Layout identifies the filename convention a timestamp was derived from.
type Layout int

const (
	// LayoutNone means the filename matched no known convention.
	LayoutNone Layout = iota
	// LayoutDeviceNative is "YYYYMMDD_HHMMSS", as written by phone cameras.
	LayoutDeviceNative
	// LayoutAppAnnotated is a prefix of up to five characters, starting with a non-digit, followed by
	// "YYYYMMDD_HHMMSS", as written by apps that add location data to DSLR photos.
	LayoutAppAnnotated
	// LayoutExif means the timestamp was read from the DateTimeOriginal EXIF tag.
	LayoutExif
)

// MarshalText encodes 'l' as its String value.
func (l Layout) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l Layout) String() string {

	switch l {
	case LayoutDeviceNative:
		return "device-native"
	case LayoutAppAnnotated:
		return "app-annotated"
	case LayoutExif:
		return "exif"
	default:
		return "none"
	}
}

// Strategy pairs a Layout with the pattern a filename must match for it.
type Strategy struct {
	Layout Layout
	// Pattern must capture year, month, day, hour, minute and second, in that order, as its last six groups.
	Pattern *regexp.Regexp
}

// Strategies are tried in order; the first one whose pattern matches (and yields a valid date) wins.
var Strategies = []*Strategy{
	{
		Layout:  LayoutDeviceNative,
		Pattern: regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})\D(\d{2})(\d{2})(\d{2})`),
	},
	{
		Layout:  LayoutAppAnnotated,
		Pattern: regexp.MustCompile(`^\D.{4}(\d{4})(\d{2})(\d{2})\D(\d{2})(\d{2})(\d{2})`),
	},
	{
		Layout:  LayoutAppAnnotated,
		Pattern: regexp.MustCompile(`^\D.{0,3}(\d{4})(\d{2})(\d{2})\D(\d{2})(\d{2})(\d{2})`),
	},
}

// Match is the result of Extract.
type Match struct {
	Layout    Layout `json:"layout"`
	Timestamp string `json:"timestamp,omitempty"`
}

// OK reports whether a timestamp was derived.
func (m Match) OK() bool {
	return m.Layout != LayoutNone
}

// Extract derives a timestamp from the base name (sans extension) of 'filename'. Names that match
// none of the Strategies, or whose digits do not form a real date and time, return a Match with
// LayoutNone.
func Extract(filename string) Match {

	name := filepath.Base(filename)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	for _, s := range Strategies {

		m := s.Pattern.FindStringSubmatch(name)

		if m == nil {
			continue
		}

		fields := m[len(m)-6:]
		t, err := time.Parse("20060102150405", strings.Join(fields, ""))

		if err != nil {
			continue
		}

		return Match{
			Layout:    s.Layout,
			Timestamp: t.Format(Format),
		}
	}

	return Match{Layout: LayoutNone}
}

// ExtractTimestamp is a convenience wrapper around Extract.
func ExtractTimestamp(filename string) (string, bool) {
	m := Extract(filename)
	return m.Timestamp, m.OK()
}

// FromExif returns the DateTimeOriginal tag in 'x' formatted as Format.
func FromExif(x *exif.Exif) (string, bool) {

	tag, err := x.Get(exif.DateTimeOriginal)

	if err != nil {
		return "", false
	}

	str_dt, err := tag.StringVal()

	if err != nil {
		return "", false
	}

	str_dt = strings.Trim(str_dt, "\" \x00")

	t, err := time.Parse(exifFormat, str_dt)

	if err != nil {
		return "", false
	}

	return t.Format(Format), true
}

// NormalizeFilename returns the base name of 'path' with its extension lowercased.
func NormalizeFilename(path string) string {

	name := filepath.Base(path)
	ext := filepath.Ext(name)

	return strings.TrimSuffix(name, ext) + strings.ToLower(ext)
}
