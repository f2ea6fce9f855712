// Package geotagtest builds small image fixtures with hand-assembled EXIF
// blocks for tests.
package geotagtest

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// UnknownTag is a main-directory tag code with no registered name.
const UnknownTag uint16 = 0xea1c

const (
	tagMake             uint16 = 0x010f
	tagExifPointer      uint16 = 0x8769
	tagGPSPointer       uint16 = 0x8825
	tagDateTimeOriginal uint16 = 0x9003

	typeByte     uint16 = 1
	typeASCII    uint16 = 2
	typeShort    uint16 = 3
	typeLong     uint16 = 4
	typeRational uint16 = 5

	// not a TIFF field type
	typeUndefinedField uint16 = 99
)

// Positions of the main-directory entries written by EXIF. The directory
// starts at offset 8 and each entry is 12 bytes after the 2 byte count.
const (
	EntryMake = iota
	EntryExifPointer
	EntryGPSPointer
	EntryUnknown
)

// EntryOffset returns the offset of main-directory entry i in a block built
// by EXIF with a GPS group.
func EntryOffset(i int) int {
	return 8 + 2 + 12*i
}

// Rational is an unsigned EXIF rational.
type Rational struct {
	Num, Den uint32
}

// DMS returns a whole-number degrees/minutes/seconds triple.
func DMS(deg, min, sec uint32) []Rational {
	return []Rational{{deg, 1}, {min, 1}, {sec, 1}}
}

// GPS lists the tags written into the GPS directory. Nil triples and empty
// references are left out.
type GPS struct {
	Latitude     []Rational
	LatitudeRef  string
	Longitude    []Rational
	LongitudeRef string
	// BrokenAltitude adds a GPSAltitude entry with an undefined field type.
	BrokenAltitude bool
}

// EXIF assembles a big-endian TIFF block with a Make tag, an Exif
// sub-directory holding DateTimeOriginal, an unnamed tag and, when gps is
// non-nil, a GPS sub-directory.
func EXIF(gps *GPS) []byte {
	ifd0 := []entry{
		ascii(tagMake, "GeoCam"),
		long(tagExifPointer, 0),
	}
	if gps != nil {
		ifd0 = append(ifd0, long(tagGPSPointer, 0))
	}
	ifd0 = append(ifd0, short(UnknownTag, 7))

	exifDir := []entry{ascii(tagDateTimeOriginal, "2024:05:01 10:00:00")}

	exifStart := uint32(8 + ifdSize(ifd0))
	gpsStart := exifStart + uint32(ifdSize(exifDir))

	ifd0[1] = long(tagExifPointer, exifStart)
	if gps != nil {
		ifd0[2] = long(tagGPSPointer, gpsStart)
	}

	out := []byte{'M', 'M', 0x00, 0x2a, 0x00, 0x00, 0x00, 0x08}
	out = append(out, encodeIFD(8, ifd0)...)
	out = append(out, encodeIFD(exifStart, exifDir)...)
	if gps != nil {
		out = append(out, encodeIFD(gpsStart, gps.entries())...)
	}
	return out
}

// JPEG encodes a small baseline JPEG. A non-nil exif block is embedded as
// an APP1 segment right after the start-of-image marker.
func JPEG(t testing.TB, exif []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, sample(), nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	base := buf.Bytes()
	if exif == nil {
		return base
	}

	payload := append([]byte("Exif\x00\x00"), exif...)
	segment := []byte{0xff, 0xe1, 0, 0}
	binary.BigEndian.PutUint16(segment[2:], uint16(len(payload)+2))

	out := make([]byte, 0, len(base)+len(segment)+len(payload))
	out = append(out, base[:2]...)
	out = append(out, segment...)
	out = append(out, payload...)
	out = append(out, base[2:]...)
	return out
}

// PNG encodes a small PNG. A non-nil exif block is stored in an eXIf chunk
// following the header chunk.
func PNG(t testing.TB, exif []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, sample()); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	base := buf.Bytes()
	if exif == nil {
		return base
	}

	// 8 byte signature + IHDR chunk (4 length, 4 type, 13 data, 4 crc)
	const ihdrEnd = 8 + 25

	chunk := make([]byte, 4, 12+len(exif))
	binary.BigEndian.PutUint32(chunk, uint32(len(exif)))
	chunk = append(chunk, "eXIf"...)
	chunk = append(chunk, exif...)
	crc := crc32.ChecksumIEEE(chunk[4:])
	chunk = binary.BigEndian.AppendUint32(chunk, crc)

	out := make([]byte, 0, len(base)+len(chunk))
	out = append(out, base[:ihdrEnd]...)
	out = append(out, chunk...)
	out = append(out, base[ihdrEnd:]...)
	return out
}

// GIF encodes a small single-frame GIF.
func GIF(t testing.TB) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := gif.Encode(&buf, sample(), nil); err != nil {
		t.Fatalf("encode gif: %v", err)
	}
	return buf.Bytes()
}

// BMP encodes a small BMP.
func BMP(t testing.TB) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := bmp.Encode(&buf, sample()); err != nil {
		t.Fatalf("encode bmp: %v", err)
	}
	return buf.Bytes()
}

// TIFF encodes a small uncompressed TIFF. Its own directory holds the image
// structure tags.
func TIFF(t testing.TB) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := tiff.Encode(&buf, sample(), nil); err != nil {
		t.Fatalf("encode tiff: %v", err)
	}
	return buf.Bytes()
}

func sample() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 32), G: uint8(y * 32), B: 128, A: 255})
		}
	}
	return img
}

func (g *GPS) entries() []entry {
	entries := []entry{{tag: 0x0000, typ: typeByte, count: 4, value: []byte{2, 3, 0, 0}}}
	if g.LatitudeRef != "" {
		entries = append(entries, ascii(0x0001, g.LatitudeRef))
	}
	if g.Latitude != nil {
		entries = append(entries, rational(0x0002, g.Latitude))
	}
	if g.LongitudeRef != "" {
		entries = append(entries, ascii(0x0003, g.LongitudeRef))
	}
	if g.Longitude != nil {
		entries = append(entries, rational(0x0004, g.Longitude))
	}
	if g.BrokenAltitude {
		entries = append(entries, entry{tag: 0x0006, typ: typeUndefinedField, count: 1, value: []byte{0, 0, 0, 1}})
	}
	return entries
}

type entry struct {
	tag   uint16
	typ   uint16
	count uint32
	value []byte
}

func ascii(tag uint16, s string) entry {
	v := append([]byte(s), 0)
	return entry{tag: tag, typ: typeASCII, count: uint32(len(v)), value: v}
}

func short(tag uint16, v uint16) entry {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	return entry{tag: tag, typ: typeShort, count: 1, value: b}
}

func long(tag uint16, v uint32) entry {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return entry{tag: tag, typ: typeLong, count: 1, value: b}
}

func rational(tag uint16, rs []Rational) entry {
	b := make([]byte, 0, 8*len(rs))
	for _, r := range rs {
		b = binary.BigEndian.AppendUint32(b, r.Num)
		b = binary.BigEndian.AppendUint32(b, r.Den)
	}
	return entry{tag: tag, typ: typeRational, count: uint32(len(rs)), value: b}
}

func ifdSize(entries []entry) int {
	n := 2 + 12*len(entries) + 4
	for _, e := range entries {
		if len(e.value) > 4 {
			n += len(e.value)
		}
	}
	return n
}

// encodeIFD lays out a directory starting at offset start, with values
// wider than four bytes stored directly after it.
func encodeIFD(start uint32, entries []entry) []byte {
	dataStart := start + uint32(2+12*len(entries)+4)

	var head, tail bytes.Buffer
	put := func(v any) { _ = binary.Write(&head, binary.BigEndian, v) }

	put(uint16(len(entries)))
	for _, e := range entries {
		put(e.tag)
		put(e.typ)
		put(e.count)
		if len(e.value) <= 4 {
			v := make([]byte, 4)
			copy(v, e.value)
			head.Write(v)
			continue
		}
		put(dataStart + uint32(tail.Len()))
		tail.Write(e.value)
	}
	put(uint32(0))

	return append(head.Bytes(), tail.Bytes()...)
}
