package photo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/abduss/photomap/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Set PHOTOMAP_TEST_POSTGRES_DSN to run against a disposable database.
func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	dsn := os.Getenv("PHOTOMAP_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("PHOTOMAP_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, storage.Migrate(ctx, pool))
	return NewRepository(pool)
}

func TestRepositoryRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	lat, lon := 40.446111, -79.982222
	suffix := time.Now().UnixNano()

	located, err := repo.Create(ctx, Record{
		OriginalFilename: "trip.jpg",
		StorageFilename:  fmt.Sprintf("located-%d.jpg", suffix),
		Latitude:         &lat,
		Longitude:        &lon,
		MimeType:         "image/jpeg",
		SizeBytes:        1024,
	})
	require.NoError(t, err)
	assert.Positive(t, located.ID)
	assert.False(t, located.UploadedAt.IsZero())
	assert.Nil(t, located.Address)

	plain, err := repo.Create(ctx, Record{
		OriginalFilename: "plain.png",
		StorageFilename:  fmt.Sprintf("plain-%d.png", suffix),
		MimeType:         "image/png",
		SizeBytes:        10,
	})
	require.NoError(t, err)
	assert.Greater(t, plain.ID, located.ID)

	got, err := repo.Get(ctx, located.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Latitude)
	assert.InDelta(t, lat, *got.Latitude, 1e-9)
	assert.InDelta(t, lon, *got.Longitude, 1e-9)

	all, err := repo.List(ctx, false)
	require.NoError(t, err)
	assert.True(t, containsID(all, plain.ID))
	assert.True(t, containsID(all, located.ID))

	onlyLocated, err := repo.List(ctx, true)
	require.NoError(t, err)
	assert.True(t, containsID(onlyLocated, located.ID))
	assert.False(t, containsID(onlyLocated, plain.ID))

	_, err = repo.Get(ctx, -1)
	assert.ErrorIs(t, err, ErrImageNotFound)
}

func TestRepositoryRejectsDuplicateStorageName(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	rec := Record{
		OriginalFilename: "dup.gif",
		StorageFilename:  fmt.Sprintf("dup-%d.gif", time.Now().UnixNano()),
		MimeType:         "image/gif",
	}
	_, err := repo.Create(ctx, rec)
	require.NoError(t, err)

	_, err = repo.Create(ctx, rec)
	assert.Error(t, err)
}

func containsID(records []Record, id int64) bool {
	for _, r := range records {
		if r.ID == id {
			return true
		}
	}
	return false
}
