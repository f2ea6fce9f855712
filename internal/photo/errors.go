package photo

import "errors"

var (
	// ErrEmptyFilename signals an upload whose file part has no name.
	ErrEmptyFilename = errors.New("empty filename")
	// ErrInvalidExtension signals a filename outside the allowed image extensions.
	ErrInvalidExtension = errors.New("file extension not allowed")
	// ErrFileTooLarge signals that the upload exceeds configured limits.
	ErrFileTooLarge = errors.New("file too large")
	// ErrInvalidImage signals bytes that cannot be read as a supported image.
	ErrInvalidImage = errors.New("invalid image")
	// ErrStoreFailed signals that the uploaded bytes could not be stored.
	ErrStoreFailed = errors.New("store upload")
	// ErrPersistFailed signals that the image record could not be written.
	ErrPersistFailed = errors.New("persist image record")
	// ErrImageNotFound signals that the image record or its bytes could not be located.
	ErrImageNotFound = errors.New("image not found")
	// ErrInvalidStorageName signals a blob name that is not a plain file name.
	ErrInvalidStorageName = errors.New("invalid storage name")
)
