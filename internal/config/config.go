package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

// Storage backends accepted by StorageConfig.Backend.
const (
	BackendDisk  = "disk"
	BackendMinIO = "minio"
)

// Config aggregates runtime configuration for the PhotoMap API.
type Config struct {
	Server   ServerConfig   `envPrefix:"PHOTOMAP_API_"`
	Postgres PostgresConfig `envPrefix:"POSTGRES_"`
	Storage  StorageConfig  `envPrefix:"PHOTOMAP_STORAGE_"`
	MinIO    MinIOConfig    `envPrefix:"MINIO_"`
	Upload   UploadConfig   `envPrefix:"PHOTOMAP_UPLOAD_"`
	CORS     CORSConfig     `envPrefix:"PHOTOMAP_CORS_"`
	Metrics  MetricsConfig  `envPrefix:"PHOTOMAP_METRICS_"`
}

// ServerConfig parameterizes the HTTP server.
type ServerConfig struct {
	Host         string        `env:"HOST" envDefault:"0.0.0.0"`
	Port         int           `env:"PORT" envDefault:"5000"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
}

// Address returns the listen address in host:port form.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// PostgresConfig contains PostgreSQL connection details.
type PostgresConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"photomap"`
	Password string `env:"PASSWORD" envDefault:"change-me"`
	Database string `env:"DB" envDefault:"photomap"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"`
}

// DSN returns the PostgreSQL DSN string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// StorageConfig selects where uploaded bytes are kept.
type StorageConfig struct {
	Backend   string `env:"BACKEND" envDefault:"disk"`
	UploadDir string `env:"UPLOAD_DIR" envDefault:"static/uploads"`
}

// MinIOConfig carries MinIO connection and bucket information.
type MinIOConfig struct {
	Endpoint        string `env:"ENDPOINT" envDefault:"localhost:9000"`
	AccessKeyID     string `env:"ROOT_USER" envDefault:"photomap"`
	SecretAccessKey string `env:"ROOT_PASSWORD" envDefault:"change-me-strong-password"`
	Bucket          string `env:"BUCKET" envDefault:"photomap"`
	UseSSL          bool   `env:"USE_SSL" envDefault:"false"`
	Region          string `env:"REGION"`
}

// UploadConfig bounds accepted uploads.
type UploadConfig struct {
	MaxBytes int64 `env:"MAX_BYTES" envDefault:"16777216"`
}

// CORSConfig lists the origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowOrigins []string      `env:"ALLOW_ORIGINS" envSeparator:"," envDefault:"*"`
	MaxAge       time.Duration `env:"MAX_AGE" envDefault:"12h"`
}

// MetricsConfig groups observability settings.
type MetricsConfig struct {
	PrometheusPath string `env:"PATH" envDefault:"/metrics"`
}

// Load reads configuration values from environment variables, applying defaults.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	cfg.Postgres.SSLMode = strings.ToLower(cfg.Postgres.SSLMode)
	cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Storage.Backend {
	case BackendDisk:
		if strings.TrimSpace(c.Storage.UploadDir) == "" {
			return fmt.Errorf("PHOTOMAP_STORAGE_UPLOAD_DIR must be set for the disk backend")
		}
	case BackendMinIO:
		if c.MinIO.Bucket == "" {
			return fmt.Errorf("MINIO_BUCKET must be set for the minio backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("PHOTOMAP_UPLOAD_MAX_BYTES must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}
