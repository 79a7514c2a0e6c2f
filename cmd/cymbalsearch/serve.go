package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/cymbalsearch/internal/config"
	dbRedis "github.com/kailas-cloud/cymbalsearch/internal/db/redis"
	logpkg "github.com/kailas-cloud/cymbalsearch/internal/logger"
	"github.com/kailas-cloud/cymbalsearch/internal/metrics"
	operationrepo "github.com/kailas-cloud/cymbalsearch/internal/repository/operation"
	chiTransport "github.com/kailas-cloud/cymbalsearch/internal/transport/chi"
	"github.com/kailas-cloud/cymbalsearch/internal/transport/discoveryengine"
	"github.com/kailas-cloud/cymbalsearch/internal/transport/gcs"
	"github.com/kailas-cloud/cymbalsearch/internal/transport/minio"
	healthuc "github.com/kailas-cloud/cymbalsearch/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/cymbalsearch/internal/usecase/ingest"
	searchuc "github.com/kailas-cloud/cymbalsearch/internal/usecase/search"
	uploaduc "github.com/kailas-cloud/cymbalsearch/internal/usecase/upload"
	"github.com/kailas-cloud/cymbalsearch/internal/version"
)

const envProd = "prod"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE:  runServe,
}

// objectStore is the storage driver surface used by the server.
type objectStore interface {
	ingestuc.ObjectStore
	healthuc.Pinger
	Bucket() string
	Close() error
}

func runServe(_ *cobra.Command, _ []string) error {
	env, cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting cymbalsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("project_id", cfg.Google.ProjectID),
		zap.String("location", cfg.Google.Location),
		zap.String("datastore_id", cfg.Google.DataStoreID),
		zap.String("app_id", cfg.Google.AppID),
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.String("bucket", cfg.Storage.Bucket),
		zap.Bool("ledger", cfg.Ledger.Enabled()),
	)
	warnIfUnauthenticated(logger, env, cfg.Auth.APIKeys)

	ctx := context.Background()

	// Register gateway metrics explicitly (no init())
	metrics.RegisterGatewayMetrics()

	store, err := newObjectStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create object store", zap.Error(err))
	}
	defer func() { _ = store.Close() }()
	logger.Info("Object store ready",
		zap.String("driver", cfg.Storage.Driver),
		zap.String("bucket", store.Bucket()),
	)

	deCfg := discoveryengine.Config{
		ProjectID:   cfg.Google.ProjectID,
		Location:    cfg.Google.Location,
		DataStoreID: cfg.Google.DataStoreID,
		AppID:       cfg.Google.AppID,
	}
	searcher, err := discoveryengine.NewSearcher(ctx, deCfg)
	if err != nil {
		logger.Fatal("Failed to create search client", zap.Error(err))
	}
	defer func() { _ = searcher.Close() }()

	importer, err := discoveryengine.NewImporter(ctx, deCfg)
	if err != nil {
		logger.Fatal("Failed to create import client", zap.Error(err))
	}
	defer func() { _ = importer.Close() }()

	// Pass nil interfaces (not typed nil pointers) when the ledger is off.
	var (
		ledger       ingestuc.Ledger
		ledgerPinger healthuc.Pinger
	)
	if cfg.Ledger.Enabled() {
		kv, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Ledger.Addrs,
			Password: cfg.Ledger.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create ledger store", zap.Error(err))
		}
		defer kv.Close()

		if err := kv.WaitForReady(ctx, time.Duration(cfg.Ledger.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Ledger not ready", zap.Error(err))
		}
		logger.Info("Connected to ledger", zap.Strings("addrs", cfg.Ledger.Addrs))
		ledger = operationrepo.New(kv, cfg.Ledger.TTL())
		ledgerPinger = kv
	}

	searchSvc := searchuc.New(searcher)
	uploadSvc := uploaduc.New(store)
	ingestSvc := ingestuc.New(store, importer, ledger, ingestuc.Config{
		Bucket:              cfg.Storage.Bucket,
		RecordDir:           cfg.Import.RecordDir,
		KeepLocalRecords:    cfg.Import.KeepLocalRecords,
		WaitTimeout:         cfg.Import.WaitTimeout(),
		PollInitialInterval: cfg.Import.PollInitialInterval(),
		PollMaxInterval:     cfg.Import.PollMaxInterval(),
	})
	healthSvc := healthuc.New(store, ledgerPinger)

	server := chiTransport.NewServer(
		searchSvc, uploadSvc, ingestSvc, healthSvc,
		int64(cfg.HTTP.MaxUploadMB)<<20,
	)
	handler := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		APIKeys:        cfg.Auth.APIKeys,
		AllowedOrigins: cfg.HTTP.CORSAllowedOrigins,
		Logger:         logger,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

func newObjectStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (objectStore, error) {
	switch cfg.Storage.Driver {
	case config.DriverMinIO:
		return minio.New(minio.Config{
			Endpoint:      cfg.Storage.MinIO.Endpoint,
			AccessKey:     cfg.Storage.MinIO.AccessKey,
			SecretKey:     cfg.Storage.MinIO.SecretKey,
			UseSSL:        cfg.Storage.MinIO.UseSSL,
			Bucket:        cfg.Storage.Bucket,
			PublicBaseURL: cfg.Storage.PublicBaseURL,
			Logger:        logger,
		})
	default:
		return gcs.New(ctx, gcs.Config{
			Bucket:        cfg.Storage.Bucket,
			PublicBaseURL: cfg.Storage.PublicBaseURL,
			Logger:        logger,
		})
	}
}

// warnIfUnauthenticated reports a production deployment running without API keys.
func warnIfUnauthenticated(logger *zap.Logger, env string, apiKeys []string) bool {
	if env != envProd || len(apiKeys) > 0 {
		return false
	}
	logger.Warn("API key authentication is disabled in production: auth.api_keys is empty")
	return true
}
