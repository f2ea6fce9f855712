package geotag

// Location is what an upload learns about where a photo was taken.
type Location struct {
	Latitude   *float64
	Longitude  *float64
	Address    *string
	GPSPresent bool
	// TagCount is the number of metadata tags decoded from the image.
	TagCount int
}

// Locate extracts the metadata of an image and resolves its GPS position.
// The only error it returns wraps ErrUnreadableImage; missing or partial GPS
// data yields a Location with GPSPresent false.
func Locate(data []byte) (Location, error) {
	set, err := Extract(data)
	if err != nil {
		return Location{}, err
	}

	loc := Location{TagCount: set.Len()}

	coord, ok := Resolve(set)
	if !ok {
		return loc, nil
	}

	loc.Latitude = &coord.Latitude
	loc.Longitude = &coord.Longitude
	loc.GPSPresent = true

	if address, err := ReverseGeocode(coord); err == nil {
		loc.Address = &address
	}
	return loc, nil
}

// ReverseGeocode is a placeholder for turning a coordinate into an address.
// It always returns ErrGeocodingUnsupported.
func ReverseGeocode(Coordinate) (string, error) {
	return "", ErrGeocodingUnsupported
}
