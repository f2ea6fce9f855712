package geotag

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	dsexif "github.com/dsoprea/go-exif/v3"
	"github.com/rwcarlsen/goexif/tiff"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Extract decodes the metadata embedded in an image.
//
// The bytes must be a container one of the registered image decoders
// recognizes, otherwise the error wraps ErrUnreadableImage. Once the
// container is identified Extract does not fail: a missing or damaged
// metadata block produces an empty or partial TagSet.
func Extract(data []byte) (TagSet, error) {
	format, err := identify(data)
	if err != nil {
		return TagSet{}, err
	}

	set := newTagSet()
	if !carriesExif(format) {
		return set, nil
	}

	raw, err := dsexif.SearchAndExtractExif(data)
	if err != nil {
		// ErrNoExif and damaged headers both mean "no metadata"
		return set, nil
	}

	decodeTIFF(raw, &set)
	return set, nil
}

func identify(data []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}
	return format, nil
}

func carriesExif(format string) bool {
	switch format {
	case "jpeg", "png", "webp", "tiff":
		return true
	}
	return false
}

func decodeTIFF(raw []byte, set *TagSet) {
	order, offset, ok := tiffHeader(raw)
	if !ok {
		return
	}

	r := bytes.NewReader(raw)
	ifd0, ok := readDir(r, order, offset)
	if !ok {
		return
	}

	var exifPtr, gpsPtr *tiff.Tag
	for _, tag := range ifd0 {
		switch tag.Id {
		case exifPointerTag:
			exifPtr = tag
		case gpsPointerTag:
			gpsPtr = tag
			continue
		}
		set.Fields[tagName(exifTagNames, tag.Id)] = tag
	}

	if exifPtr != nil {
		if sub, ok := readPointedDir(r, order, exifPtr); ok {
			for _, tag := range sub {
				set.Fields[tagName(exifTagNames, tag.Id)] = tag
			}
		}
	}

	if gpsPtr != nil {
		if sub, ok := readPointedDir(r, order, gpsPtr); ok {
			gps := make(GPSGroup, len(sub))
			for _, tag := range sub {
				gps[tagName(gpsTagNames, tag.Id)] = tag
			}
			set.GPS = gps
		}
	}
}

// tiffHeader validates the TIFF header of an EXIF block and returns the
// byte order and the offset of the first directory.
func tiffHeader(raw []byte) (binary.ByteOrder, int64, bool) {
	header, err := dsexif.ParseExifHeader(raw)
	if err != nil {
		return nil, 0, false
	}

	offset := int64(header.FirstIfdOffset)
	if offset < 8 || offset >= int64(len(raw)) {
		return nil, 0, false
	}
	return header.ByteOrder, offset, true
}

func readPointedDir(r *bytes.Reader, order binary.ByteOrder, ptr *tiff.Tag) ([]*tiff.Tag, bool) {
	if ptr.Format() != tiff.IntVal {
		return nil, false
	}
	offset, err := ptr.Int64(0)
	if err != nil || offset < 8 || offset >= r.Size() {
		return nil, false
	}
	return readDir(r, order, offset)
}

// readDir decodes the directory at offset one entry at a time. Entries that
// fail to decode are skipped so a single bad tag keeps its siblings.
func readDir(r *bytes.Reader, order binary.ByteOrder, offset int64) ([]*tiff.Tag, bool) {
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return nil, false
	}
	var count uint16
	if err := binary.Read(r, order, &count); err != nil {
		return nil, false
	}

	tags := make([]*tiff.Tag, 0, count)
	for i := int64(0); i < int64(count); i++ {
		at := offset + 2 + 12*i
		if at+12 > r.Size() {
			break
		}
		if _, err := r.Seek(at, io.SeekStart); err != nil {
			break
		}
		tag, err := tiff.DecodeTag(r, order)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
	}
	return tags, true
}
