package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/sotkanet-dashboard/internal/config"
	"github.com/sotkanet-dashboard/internal/infrastructure/sotkanet"
	"github.com/sotkanet-dashboard/internal/pkg/logger"
	repo "github.com/sotkanet-dashboard/internal/repository/metadata"
	"github.com/sotkanet-dashboard/internal/usecase"
	"github.com/sotkanet-dashboard/internal/worker"
	metadataWorker "github.com/sotkanet-dashboard/internal/worker/metadata"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Check if worker is enabled
	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Metadata Refresh Worker")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.Duration("refresh_interval", cfg.Worker.RefreshInterval),
		zap.Ints("indicators", cfg.IndicatorIDs))

	// 3. Initialize repositories
	sotkanetClient := sotkanet.NewClient(&cfg.Sotkanet, log)
	defer sotkanetClient.Close()

	metadataRepo := repo.NewFileRepository(cfg.Metadata.File, log)

	// 4. Initialize use cases
	metadataUC := usecase.NewMetadataUseCase(sotkanetClient, metadataRepo, cfg, log)

	// 5. Initialize workers
	refreshWorker := metadataWorker.NewRefreshWorker(
		metadataUC,
		cfg.Worker.RefreshInterval,
		log,
	)

	// 6. Create worker manager and register workers
	workerManager := worker.NewManager(log)
	workerManager.Register(refreshWorker)

	// 7. Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start workers
	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info("Received shutdown signal")

	// Cancel context to stop workers
	cancel()

	// Stop worker manager
	if err := workerManager.Stop(); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}

	log.Info("Worker shutdown complete")
}
