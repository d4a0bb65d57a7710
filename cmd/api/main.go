package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/adilkhan/custarchive/internal/auth"
	"github.com/adilkhan/custarchive/internal/blob"
	"github.com/adilkhan/custarchive/internal/config"
	"github.com/adilkhan/custarchive/internal/customer"
	"github.com/adilkhan/custarchive/internal/file"
	"github.com/adilkhan/custarchive/internal/logger"
	"github.com/adilkhan/custarchive/internal/server"
	"github.com/adilkhan/custarchive/internal/storage"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
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

	if err := storage.RunMigrations(ctx, dbPool); err != nil {
		logg.Fatal("run migrations", zap.Error(err))
	}

	var blobStore blob.Store
	var minioClient *minio.Client
	switch cfg.Blob.Backend {
	case config.BlobBackendMinIO:
		minioClient, err = storage.NewMinIOClient(cfg.Blob)
		if err != nil {
			logg.Fatal("connect minio", zap.Error(err))
		}
		if err := storage.EnsureBucket(ctx, minioClient, cfg.Blob.Bucket, cfg.Blob.Region); err != nil {
			logg.Fatal("ensure bucket", zap.Error(err))
		}
		blobStore = blob.NewMinioStore(minioClient, cfg.Blob.Bucket)
	default:
		diskStore, err := blob.NewDiskStore(cfg.Blob.Dir)
		if err != nil {
			logg.Fatal("init blob storage", zap.Error(err))
		}
		blobStore = diskStore
	}

	authRepo := auth.NewRepository(dbPool)
	authService := auth.NewService(authRepo, cfg.Auth)

	customerRepo := customer.NewRepository(dbPool)
	fileRepo := file.NewRepository(dbPool)

	customerService := customer.NewService(customerRepo, authRepo, fileRepo, blobStore)
	fileService := file.NewService(fileRepo, customerRepo, blobStore)

	router := server.NewRouter(server.Dependencies{
		Config:          cfg,
		DB:              dbPool,
		ObjectStore:     minioClient,
		AuthService:     authService,
		CustomerService: customerService,
		FileService:     fileService,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logg.Info("archive API listening", zap.String("address", cfg.Server.Address()))
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
