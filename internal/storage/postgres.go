package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/abduss/photomap/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultDBTimeout = 5 * time.Second
	maxPoolConns     = 10
)

// NewPostgresPool connects to PostgreSQL using pgx and verifies the connection.
func NewPostgresPool(ctx context.Context, cfg config.PostgresConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	poolCfg.MaxConns = maxPoolConns
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultDBTimeout)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return pool, nil
}

// schema is applied on every start; statements must stay idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS images (
    id                BIGSERIAL PRIMARY KEY,
    original_filename TEXT NOT NULL,
    storage_filename  TEXT NOT NULL UNIQUE,
    uploaded_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    latitude          DOUBLE PRECISION,
    longitude         DOUBLE PRECISION,
    address           TEXT,
    caption           TEXT,
    mime_type         TEXT,
    file_size_bytes   BIGINT
);
CREATE INDEX IF NOT EXISTS images_uploaded_at_idx ON images (uploaded_at DESC);
`

// Migrate creates the record tables when they do not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(ctx, defaultDBTimeout)
	defer cancel()

	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
