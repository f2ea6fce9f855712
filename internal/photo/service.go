package photo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"strings"

	"github.com/abduss/photomap/internal/geotag"
	"github.com/abduss/photomap/internal/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultMaxFileSize = 16 << 20

type recordStore interface {
	Create(ctx context.Context, rec Record) (Record, error)
	List(ctx context.Context, located bool) ([]Record, error)
	Get(ctx context.Context, id int64) (Record, error)
}

// Service accepts uploads, locates them and keeps their records.
type Service struct {
	repo        recordStore
	blobs       BlobStore
	maxFileSize int64
	log         *zap.Logger
	newName     func(ext string) string
}

// NewService constructs an upload service. A non-positive maxFileSize
// falls back to 16 MiB.
func NewService(repo recordStore, blobs BlobStore, maxFileSize int64, log *zap.Logger) *Service {
	if maxFileSize <= 0 {
		maxFileSize = defaultMaxFileSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		repo:        repo,
		blobs:       blobs,
		maxFileSize: maxFileSize,
		log:         log,
		newName: func(ext string) string {
			return uuid.NewString() + "." + ext
		},
	}
}

// MaxFileSize is the largest accepted upload in bytes.
func (s *Service) MaxFileSize() int64 {
	return s.maxFileSize
}

// Upload validates and stores an image, reads its GPS position and records it.
// The stored bytes are removed again when the image is unreadable or the
// record cannot be written.
func (s *Service) Upload(ctx context.Context, fileHeader *multipart.FileHeader) (UploadResult, error) {
	if fileHeader == nil || strings.TrimSpace(fileHeader.Filename) == "" {
		metrics.ObserveUpload(metrics.OutcomeRejected)
		return UploadResult{}, ErrEmptyFilename
	}

	ext, ok := allowedExtension(fileHeader.Filename)
	if !ok {
		metrics.ObserveUpload(metrics.OutcomeRejected)
		return UploadResult{}, ErrInvalidExtension
	}

	data, err := s.read(fileHeader)
	if err != nil {
		if errors.Is(err, ErrFileTooLarge) {
			metrics.ObserveUpload(metrics.OutcomeRejected)
		} else {
			metrics.ObserveUpload(metrics.OutcomeStoreFailed)
		}
		return UploadResult{}, err
	}

	original := SecureFilename(fileHeader.Filename)
	if original == "" {
		original = "upload." + ext
	}
	storageName := s.newName(ext)
	contentType := detectContentType(fileHeader, ext)

	log := s.log.With(zap.String("storage_name", storageName), zap.String("filename", original))

	if err := s.blobs.Put(ctx, storageName, data, contentType); err != nil {
		log.Error("store upload", zap.Error(err))
		metrics.ObserveUpload(metrics.OutcomeStoreFailed)
		return UploadResult{}, fmt.Errorf("%w: %w", ErrStoreFailed, err)
	}

	loc, err := geotag.Locate(data)
	if err != nil {
		log.Warn("uploaded file is not a readable image", zap.Error(err))
		s.discard(ctx, log, storageName)
		metrics.ObserveUpload(metrics.OutcomeInvalidImage)
		return UploadResult{}, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}
	metrics.ObserveGPS(loc.GPSPresent)

	rec, err := s.repo.Create(ctx, Record{
		OriginalFilename: original,
		StorageFilename:  storageName,
		Latitude:         loc.Latitude,
		Longitude:        loc.Longitude,
		Address:          loc.Address,
		MimeType:         contentType,
		SizeBytes:        int64(len(data)),
	})
	if err != nil {
		log.Error("persist image record", zap.Error(err))
		s.discard(ctx, log, storageName)
		metrics.ObserveUpload(metrics.OutcomeDBFailed)
		return UploadResult{}, fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}

	metrics.ObserveUpload(metrics.OutcomeCreated)
	log.Info("image uploaded",
		zap.Int64("image_id", rec.ID),
		zap.Bool("gps_present", loc.GPSPresent),
		zap.Int("exif_tags", loc.TagCount),
	)
	return UploadResult{Record: rec, GPSPresent: loc.GPSPresent}, nil
}

// List returns stored records, newest first.
func (s *Service) List(ctx context.Context, located bool) ([]Record, error) {
	return s.repo.List(ctx, located)
}

// Get returns one record.
func (s *Service) Get(ctx context.Context, id int64) (Record, error) {
	return s.repo.Get(ctx, id)
}

// Open returns a record together with a reader over its stored bytes.
func (s *Service) Open(ctx context.Context, id int64) (Record, io.ReadCloser, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return Record{}, nil, err
	}
	reader, err := s.blobs.Open(ctx, rec.StorageFilename)
	if err != nil {
		return Record{}, nil, err
	}
	return rec, reader, nil
}

func (s *Service) read(fileHeader *multipart.FileHeader) ([]byte, error) {
	if fileHeader.Size > s.maxFileSize {
		return nil, ErrFileTooLarge
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open upload: %w", ErrStoreFailed, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read upload: %w", ErrStoreFailed, err)
	}
	if int64(len(data)) > s.maxFileSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}

func (s *Service) discard(ctx context.Context, log *zap.Logger, name string) {
	if err := s.blobs.Remove(ctx, name); err != nil {
		log.Warn("remove stored upload", zap.Error(err))
	}
}

func detectContentType(fileHeader *multipart.FileHeader, ext string) string {
	contentType := fileHeader.Header.Get("Content-Type")
	if contentType != "" && contentType != "application/octet-stream" {
		return contentType
	}
	if byExt := mime.TypeByExtension("." + ext); byExt != "" {
		return byExt
	}
	return "application/octet-stream"
}
