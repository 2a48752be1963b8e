// Package exiftest builds small JPEG images carrying synthetic EXIF GPS and date tags for use in tests.
package exiftest

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"

	"github.com/sfomuseum/go-photos-geojson/gps"
)

const (
	typeASCII    uint16 = 2
	typeLong     uint16 = 4
	typeRational uint16 = 5
)

const (
	tagExifPointer      uint16 = 0x8769
	tagGPSPointer       uint16 = 0x8825
	tagGPSLatitudeRef   uint16 = 0x0001
	tagGPSLatitude      uint16 = 0x0002
	tagGPSLongitudeRef  uint16 = 0x0003
	tagGPSLongitude     uint16 = 0x0004
	tagDateTimeOriginal uint16 = 0x9003
)

// Fixture describes the tags to embed. Nil triples and empty strings are omitted.
type Fixture struct {
	Latitude         *gps.RationalTriple
	LatitudeRef      string
	Longitude        *gps.RationalTriple
	LongitudeRef     string
	DateTimeOriginal string
}

// GPS returns a Fixture for the signed decimal coordinates 'lat' and 'lon'.
func GPS(lat float64, lon float64) Fixture {

	lat_triple, lat_ref := gps.EncodeCoordinate(lat, gps.Latitude)
	lon_triple, lon_ref := gps.EncodeCoordinate(lon, gps.Longitude)

	return Fixture{
		Latitude:     &lat_triple,
		LatitudeRef:  lat_ref,
		Longitude:    &lon_triple,
		LongitudeRef: lon_ref,
	}
}

// JPEG returns an 8x8 JPEG image with the tags in 'f' stored in an APP1 segment. A Fixture with no
// tags at all produces a JPEG without any EXIF segment.
func JPEG(f Fixture) ([]byte, error) {

	im := image.NewGray(image.Rect(0, 0, 8, 8))

	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			im.SetGray(x, y, color.Gray{Y: uint8((x * y * 4) % 256)})
		}
	}

	var buf bytes.Buffer

	err := jpeg.Encode(&buf, im, nil)

	if err != nil {
		return nil, err
	}

	body := buf.Bytes()

	tiff_body := TIFF(f)

	if tiff_body == nil {
		return body, nil
	}

	payload := append([]byte("Exif\x00\x00"), tiff_body...)

	app1 := []byte{0xFF, 0xE1, 0x00, 0x00}
	binary.BigEndian.PutUint16(app1[2:], uint16(len(payload)+2))
	app1 = append(app1, payload...)

	out := make([]byte, 0, len(body)+len(app1))
	out = append(out, body[:2]...)
	out = append(out, app1...)
	out = append(out, body[2:]...)

	return out, nil
}

type entry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

type directory []*entry

func (d directory) size() int {

	sz := 2 + 12*len(d) + 4

	for _, e := range d {
		if len(e.data) > 4 {
			sz += len(e.data) + len(e.data)%2
		}
	}

	return sz
}

// TIFF returns the little-endian TIFF block for 'f', or nil if 'f' has no tags.
func TIFF(f Fixture) []byte {

	gps_dir := directory{}

	if f.LatitudeRef != "" {
		gps_dir = append(gps_dir, asciiEntry(tagGPSLatitudeRef, f.LatitudeRef))
	}

	if f.Latitude != nil {
		gps_dir = append(gps_dir, rationalEntry(tagGPSLatitude, *f.Latitude))
	}

	if f.LongitudeRef != "" {
		gps_dir = append(gps_dir, asciiEntry(tagGPSLongitudeRef, f.LongitudeRef))
	}

	if f.Longitude != nil {
		gps_dir = append(gps_dir, rationalEntry(tagGPSLongitude, *f.Longitude))
	}

	exif_dir := directory{}

	if f.DateTimeOriginal != "" {
		exif_dir = append(exif_dir, asciiEntry(tagDateTimeOriginal, f.DateTimeOriginal))
	}

	if len(gps_dir) == 0 && len(exif_dir) == 0 {
		return nil
	}

	root := directory{}

	var exif_ptr *entry
	var gps_ptr *entry

	if len(exif_dir) > 0 {
		exif_ptr = &entry{tag: tagExifPointer, typ: typeLong, count: 1, data: make([]byte, 4)}
		root = append(root, exif_ptr)
	}

	if len(gps_dir) > 0 {
		gps_ptr = &entry{tag: tagGPSPointer, typ: typeLong, count: 1, data: make([]byte, 4)}
		root = append(root, gps_ptr)
	}

	offset := 8 + root.size()

	if exif_ptr != nil {
		binary.LittleEndian.PutUint32(exif_ptr.data, uint32(offset))
		offset += exif_dir.size()
	}

	if gps_ptr != nil {
		binary.LittleEndian.PutUint32(gps_ptr.data, uint32(offset))
	}

	var buf bytes.Buffer

	buf.Write([]byte("II*\x00"))
	binary.Write(&buf, binary.LittleEndian, uint32(8))

	writeDirectory(&buf, root)

	if exif_ptr != nil {
		writeDirectory(&buf, exif_dir)
	}

	if gps_ptr != nil {
		writeDirectory(&buf, gps_dir)
	}

	return buf.Bytes()
}

func writeDirectory(buf *bytes.Buffer, d directory) {

	base := buf.Len()
	data_offset := base + 2 + 12*len(d) + 4

	var data bytes.Buffer

	binary.Write(buf, binary.LittleEndian, uint16(len(d)))

	for _, e := range d {

		binary.Write(buf, binary.LittleEndian, e.tag)
		binary.Write(buf, binary.LittleEndian, e.typ)
		binary.Write(buf, binary.LittleEndian, e.count)

		if len(e.data) <= 4 {
			inline := make([]byte, 4)
			copy(inline, e.data)
			buf.Write(inline)
			continue
		}

		binary.Write(buf, binary.LittleEndian, uint32(data_offset+data.Len()))
		data.Write(e.data)

		if len(e.data)%2 == 1 {
			data.WriteByte(0)
		}
	}

	binary.Write(buf, binary.LittleEndian, uint32(0))
	buf.Write(data.Bytes())
}

func asciiEntry(tag uint16, value string) *entry {

	data := append([]byte(value), 0)

	return &entry{
		tag:   tag,
		typ:   typeASCII,
		count: uint32(len(data)),
		data:  data,
	}
}

func rationalEntry(tag uint16, t gps.RationalTriple) *entry {

	data := make([]byte, 24)

	for i, r := range t {
		binary.LittleEndian.PutUint32(data[i*8:], uint32(r.Numerator))
		binary.LittleEndian.PutUint32(data[i*8+4:], uint32(r.Denominator))
	}

	return &entry{
		tag:   tag,
		typ:   typeRational,
		count: 3,
		data:  data,
	}
}
