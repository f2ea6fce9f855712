package geotag

import (
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// Coordinate is a position in signed decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Resolve computes the coordinate recorded in the GPS group of set.
//
// The boolean is false when the GPS group is absent or any of latitude,
// latitude reference, longitude and longitude reference is missing or
// malformed. A partial group never yields a coordinate. Values are not
// range checked.
func Resolve(set TagSet) (Coordinate, bool) {
	if set.GPS == nil {
		return Coordinate{}, false
	}

	lat, ok := set.GPS.decimal(exif.GPSLatitude, exif.GPSLatitudeRef)
	if !ok {
		return Coordinate{}, false
	}
	lon, ok := set.GPS.decimal(exif.GPSLongitude, exif.GPSLongitudeRef)
	if !ok {
		return Coordinate{}, false
	}

	return Coordinate{Latitude: lat, Longitude: lon}, true
}

// DecimalFromDMS converts degrees, minutes and seconds to decimal degrees.
// A ref of "S" or "W" negates the whole value.
func DecimalFromDMS(degrees, minutes, seconds float64, ref string) float64 {
	decimal := degrees + minutes/60 + seconds/3600
	if ref == "S" || ref == "W" {
		decimal = -decimal
	}
	return decimal
}

func (g GPSGroup) decimal(valueName, refName exif.FieldName) (float64, bool) {
	dms, ok := g.dms(string(valueName))
	if !ok {
		return 0, false
	}
	ref, ok := g.ref(string(refName))
	if !ok {
		return 0, false
	}
	return DecimalFromDMS(dms[0], dms[1], dms[2], ref), true
}

func (g GPSGroup) dms(name string) ([3]float64, bool) {
	var out [3]float64

	tag, ok := g[name]
	if !ok || tag == nil || tag.Format() != tiff.RatVal || tag.Count < 3 {
		return out, false
	}

	for i := range out {
		num, den, err := tag.Rat2(i)
		if err != nil || den == 0 {
			return out, false
		}
		out[i] = float64(num) / float64(den)
	}
	return out, true
}

func (g GPSGroup) ref(name string) (string, bool) {
	tag, ok := g[name]
	if !ok || tag == nil || tag.Format() != tiff.StringVal {
		return "", false
	}
	val, err := tag.StringVal()
	if err != nil {
		return "", false
	}
	val = strings.TrimSpace(strings.TrimRight(val, "\x00"))
	return val, val != ""
}
