package photo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const repoTimeout = 5 * time.Second

const recordColumns = `id, original_filename, storage_filename, uploaded_at, latitude, longitude, address, caption,
       COALESCE(mime_type, ''), COALESCE(file_size_bytes, 0)`

// Repository provides access to image records.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a new image repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a record and returns it with its id and upload time.
func (r *Repository) Create(ctx context.Context, rec Record) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
INSERT INTO images (original_filename, storage_filename, latitude, longitude, address, mime_type, file_size_bytes)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + recordColumns + `;`

	row := r.pool.QueryRow(ctx, query,
		rec.OriginalFilename,
		rec.StorageFilename,
		rec.Latitude,
		rec.Longitude,
		rec.Address,
		rec.MimeType,
		rec.SizeBytes,
	)

	stored, err := scanRecord(row)
	if err != nil {
		return Record{}, fmt.Errorf("create image record: %w", err)
	}
	return stored, nil
}

// List returns records newest first. With located set only records with a
// coordinate are returned.
func (r *Repository) List(ctx context.Context, located bool) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
SELECT ` + recordColumns + `
FROM images
WHERE $1 = FALSE OR (latitude IS NOT NULL AND longitude IS NOT NULL)
ORDER BY uploaded_at DESC, id DESC;`

	rows, err := r.pool.Query(ctx, query, located)
	if err != nil {
		return nil, fmt.Errorf("list image records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan image record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate image records: %w", err)
	}
	return records, nil
}

// Get fetches a single record.
func (r *Repository) Get(ctx context.Context, id int64) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `SELECT ` + recordColumns + ` FROM images WHERE id = $1;`

	rec, err := scanRecord(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrImageNotFound
		}
		return Record{}, fmt.Errorf("get image record: %w", err)
	}
	return rec, nil
}

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(
		&rec.ID,
		&rec.OriginalFilename,
		&rec.StorageFilename,
		&rec.UploadedAt,
		&rec.Latitude,
		&rec.Longitude,
		&rec.Address,
		&rec.Caption,
		&rec.MimeType,
		&rec.SizeBytes,
	)
	return rec, err
}
