package geotag

import "errors"

var (
	// ErrUnreadableImage indicates the bytes are not a supported image container.
	ErrUnreadableImage = errors.New("unreadable image")
	// ErrGeocodingUnsupported is returned by ReverseGeocode until a geocoder exists.
	ErrGeocodingUnsupported = errors.New("reverse geocoding not implemented")
)
