package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/abduss/photomap/internal/config"
	"github.com/abduss/photomap/internal/logger"
	"github.com/abduss/photomap/internal/metrics"
	"github.com/abduss/photomap/internal/photo"
	"github.com/abduss/photomap/internal/server"
	"github.com/abduss/photomap/internal/storage"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	logg, err := logger.Init()
	if err != nil {
		panic("init logger: " + err.Error())
	}
	defer logg.Sync()

	cfg, err := config.Load()
	if err != nil {
		logg.Fatal("load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := storage.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logg.Fatal("connect postgres", zap.Error(err))
	}
	defer dbPool.Close()

	if err := storage.Migrate(ctx, dbPool); err != nil {
		logg.Fatal("migrate schema", zap.Error(err))
	}

	blobs, err := openBlobStore(ctx, cfg)
	if err != nil {
		logg.Fatal("open upload storage", zap.String("backend", cfg.Storage.Backend), zap.Error(err))
	}

	metrics.InitMetrics()

	photoRepo := photo.NewRepository(dbPool)
	photoService := photo.NewService(photoRepo, blobs, cfg.Upload.MaxBytes, logg.Named("photo"))

	router := server.NewRouter(server.Dependencies{
		Config:       cfg,
		DB:           dbPool,
		Storage:      blobs,
		PhotoService: photoService,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logg.Info("PhotoMap API listening",
			zap.String("address", cfg.Server.Address()),
			zap.String("storage_backend", cfg.Storage.Backend),
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logg.Info("shutting down gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logg.Error("shutdown error", zap.Error(err))
	}
}

func openBlobStore(ctx context.Context, cfg config.Config) (photo.BlobStore, error) {
	if cfg.Storage.Backend == config.BackendMinIO {
		store, err := photo.OpenMinIOStore(cfg.MinIO)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	}
	return photo.NewDiskStore(cfg.Storage.UploadDir)
}
