package geotag

import (
	"encoding/binary"
	"errors"
	"strconv"
	"testing"

	"github.com/abduss/photomap/internal/geotag/geotagtest"
)

func TestExtractRejectsNonImage(t *testing.T) {
	_, err := Extract([]byte("this is not an image"))
	if !errors.Is(err, ErrUnreadableImage) {
		t.Fatalf("expected ErrUnreadableImage, got %v", err)
	}
}

func TestExtractRejectsEmptyInput(t *testing.T) {
	if _, err := Extract(nil); !errors.Is(err, ErrUnreadableImage) {
		t.Fatalf("expected ErrUnreadableImage, got %v", err)
	}
}

func TestExtractImagesWithoutMetadata(t *testing.T) {
	cases := map[string][]byte{
		"jpeg": geotagtest.JPEG(t, nil),
		"png":  geotagtest.PNG(t, nil),
		"gif":  geotagtest.GIF(t),
		"bmp":  geotagtest.BMP(t),
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			set, err := Extract(data)
			if err != nil {
				t.Fatalf("Extract returned error: %v", err)
			}
			if set.Len() != 0 {
				t.Fatalf("expected no tags, got %d", set.Len())
			}
			if set.GPS != nil {
				t.Fatalf("expected no GPS group")
			}
		})
	}
}

func TestExtractNestsGPSGroup(t *testing.T) {
	data := geotagtest.JPEG(t, geotagtest.EXIF(&geotagtest.GPS{
		Latitude:     geotagtest.DMS(10, 30, 0),
		LatitudeRef:  "N",
		Longitude:    geotagtest.DMS(20, 15, 30),
		LongitudeRef: "E",
	}))

	set, err := Extract(data)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	makeTag, ok := set.Get("Make")
	if !ok {
		t.Fatalf("expected Make tag, got fields %v", keys(set.Fields))
	}
	if v, _ := makeTag.StringVal(); v != "GeoCam" {
		t.Fatalf("unexpected Make value %q", v)
	}
	if _, ok := set.Get("DateTimeOriginal"); !ok {
		t.Fatalf("expected Exif sub-directory tags to be merged, got %v", keys(set.Fields))
	}
	if _, ok := set.Get(GPSKey); ok {
		t.Fatalf("GPS pointer must not be flattened into the main fields")
	}

	for _, name := range []string{"GPSVersionID", "GPSLatitudeRef", "GPSLatitude", "GPSLongitudeRef", "GPSLongitude"} {
		if _, ok := set.GPS[name]; !ok {
			t.Fatalf("expected %s in GPS group", name)
		}
	}
}

func TestExtractKeysUnknownTagsByCode(t *testing.T) {
	set, err := Extract(geotagtest.JPEG(t, geotagtest.EXIF(nil)))
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	code := strconv.Itoa(int(geotagtest.UnknownTag))
	if _, ok := set.Get(code); !ok {
		t.Fatalf("expected unknown tag under key %s, got %v", code, keys(set.Fields))
	}
	if set.GPS != nil {
		t.Fatalf("expected no GPS group when the block has no GPS pointer")
	}
}

func TestExtractReadsPNGExifChunk(t *testing.T) {
	data := geotagtest.PNG(t, geotagtest.EXIF(&geotagtest.GPS{
		Latitude:     geotagtest.DMS(1, 2, 3),
		LatitudeRef:  "S",
		Longitude:    geotagtest.DMS(4, 5, 6),
		LongitudeRef: "W",
	}))

	set, err := Extract(data)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if _, ok := set.GPS["GPSLatitude"]; !ok {
		t.Fatalf("expected GPS group decoded from eXIf chunk")
	}
}

func TestExtractToleratesCorruptMetadata(t *testing.T) {
	corrupt := []byte{'M', 'M', 0x00, 0x2a, 0x00, 0x00, 0xff, 0xf0}

	set, err := Extract(geotagtest.JPEG(t, corrupt))
	if err != nil {
		t.Fatalf("Extract returned error for corrupt metadata: %v", err)
	}
	if set.GPS != nil {
		t.Fatalf("expected no GPS group")
	}
}

func TestExtractReadsTIFFDirectory(t *testing.T) {
	set, err := Extract(geotagtest.TIFF(t))
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if _, ok := set.Get("ImageWidth"); !ok {
		t.Fatalf("expected the TIFF directory to be decoded, got %v", keys(set.Fields))
	}
	if set.GPS != nil {
		t.Fatalf("expected no GPS group")
	}
}

func TestExtractSkipsUndecodableEntries(t *testing.T) {
	gps := &geotagtest.GPS{
		Latitude:       geotagtest.DMS(10, 30, 0),
		LatitudeRef:    "N",
		Longitude:      geotagtest.DMS(20, 15, 30),
		LongitudeRef:   "E",
		BrokenAltitude: true,
	}

	cases := []struct {
		name    string
		corrupt func(raw []byte)
		lost    string
	}{
		{
			name: "zero count",
			corrupt: func(raw []byte) {
				binary.BigEndian.PutUint32(raw[geotagtest.EntryOffset(geotagtest.EntryUnknown)+4:], 0)
			},
			lost: strconv.Itoa(int(geotagtest.UnknownTag)),
		},
		{
			name: "value offset past end",
			corrupt: func(raw []byte) {
				binary.BigEndian.PutUint32(raw[geotagtest.EntryOffset(geotagtest.EntryMake)+8:], 0xffffff00)
			},
			lost: "Make",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := geotagtest.EXIF(gps)
			tc.corrupt(raw)

			set, err := Extract(geotagtest.JPEG(t, raw))
			if err != nil {
				t.Fatalf("Extract returned error: %v", err)
			}
			if _, ok := set.Get(tc.lost); ok {
				t.Fatalf("expected %s to be skipped", tc.lost)
			}
			if _, ok := set.Get("DateTimeOriginal"); !ok {
				t.Fatalf("expected Exif sub-directory to survive, got %v", keys(set.Fields))
			}
			if _, ok := set.GPS["GPSAltitude"]; ok {
				t.Fatalf("expected broken GPSAltitude to be skipped")
			}

			coord, ok := Resolve(set)
			if !ok {
				t.Fatalf("expected coordinate despite bad sibling tags, GPS group %v", keys(set.GPS))
			}
			if coord.Latitude != 10.5 {
				t.Fatalf("unexpected latitude %v", coord.Latitude)
			}
		})
	}
}

func TestTiffHeader(t *testing.T) {
	cases := []struct {
		name string
		raw  []byte
		ok   bool
	}{
		{"big endian", []byte{'M', 'M', 0, 42, 0, 0, 0, 8, 0, 0}, true},
		{"little endian", []byte{'I', 'I', 42, 0, 8, 0, 0, 0, 0, 0}, true},
		{"short", []byte{'M', 'M', 0, 42}, false},
		{"bad order", []byte{'X', 'X', 0, 42, 0, 0, 0, 8, 0, 0}, false},
		{"bad magic", []byte{'M', 'M', 0, 43, 0, 0, 0, 8, 0, 0}, false},
		{"offset past end", []byte{'M', 'M', 0, 42, 0, 0, 1, 0, 0, 0}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, ok := tiffHeader(tc.raw); ok != tc.ok {
				t.Fatalf("tiffHeader ok = %v, want %v", ok, tc.ok)
			}
		})
	}
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
