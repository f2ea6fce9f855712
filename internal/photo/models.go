package photo

import "time"

// Record is the stored description of one uploaded image.
type Record struct {
	ID               int64     `json:"id"`
	OriginalFilename string    `json:"original_filename"`
	StorageFilename  string    `json:"storage_filename"`
	UploadedAt       time.Time `json:"uploaded_at"`
	Latitude         *float64  `json:"latitude"`
	Longitude        *float64  `json:"longitude"`
	Address          *string   `json:"address"`
	Caption          *string   `json:"caption,omitempty"`
	MimeType         string    `json:"mime_type"`
	SizeBytes        int64     `json:"file_size_bytes"`
}

// Located reports whether the record carries a coordinate.
func (r Record) Located() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// UploadResult is the outcome of a successful upload.
type UploadResult struct {
	Record     Record
	GPSPresent bool
}
