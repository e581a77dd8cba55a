package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sotkanet-dashboard/internal/config"
	httpDelivery "github.com/sotkanet-dashboard/internal/delivery/http"
	"github.com/sotkanet-dashboard/internal/delivery/http/handler"
	"github.com/sotkanet-dashboard/internal/infrastructure/sotkanet"
	"github.com/sotkanet-dashboard/internal/pkg/logger"
	"github.com/sotkanet-dashboard/internal/repository/cache"
	"github.com/sotkanet-dashboard/internal/repository/metadata"
	"github.com/sotkanet-dashboard/internal/usecase"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Sotkanet Dashboard API")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.Ints("indicators", cfg.IndicatorIDs),
	)

	// 3. Open cache backend
	store, err := newCacheStore(cfg, log)
	if err != nil {
		log.Fatal("Failed to open cache backend", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Failed to close cache backend", zap.Error(err))
		}
	}()

	// 4. Initialize repositories
	sotkanetClient := sotkanet.NewClient(&cfg.Sotkanet, log)
	defer sotkanetClient.Close()

	dataCache := cache.NewDataCache(store, &cfg.Cache, log)
	metadataRepo := metadata.NewFileRepository(cfg.Metadata.File, log)

	log.Info("Repositories initialized")

	// 5. Initialize use cases
	metadataUC := usecase.NewMetadataUseCase(sotkanetClient, metadataRepo, cfg, log)
	fetcherUC := usecase.NewFetcherUseCase(sotkanetClient, dataCache, metadataUC, &cfg.Sotkanet, log)
	processorUC := usecase.NewProcessorUseCase(log)
	validationUC := usecase.NewValidationUseCase(fetcherUC, cfg.Sotkanet.DefaultYears(), log)
	exportUC := usecase.NewExportUseCase(fetcherUC, processorUC, metadataUC, log)

	log.Info("Use cases initialized")

	// 6. Initialize HTTP handlers
	indicatorHandler := handler.NewIndicatorHandler(metadataUC, log)
	dataHandler := handler.NewDataHandler(fetcherUC, processorUC, log)
	validationHandler := handler.NewValidationHandler(validationUC, cfg.IndicatorIDs, log)
	metadataHandler := handler.NewMetadataHandler(metadataUC, log)
	exportHandler := handler.NewExportHandler(exportUC, cfg.IndicatorIDs, log)
	regionHandler := handler.NewRegionHandler(sotkanetClient, log)
	cacheHandler := handler.NewCacheHandler(dataCache, log)

	log.Info("HTTP handlers initialized")

	// 7. Initialize HTTP server
	server := httpDelivery.NewServer(
		cfg,
		log,
		indicatorHandler,
		dataHandler,
		validationHandler,
		metadataHandler,
		exportHandler,
		regionHandler,
		cacheHandler,
	)

	// 8. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Env),
	)

	// 9. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}

// newCacheStore открывает бэкенд кеша из конфигурации: badger на
// локальном диске или redis для нескольких процессов
func newCacheStore(cfg *config.Config, log *zap.Logger) (cache.Store, error) {
	switch cfg.Cache.Backend {
	case "redis":
		return cache.NewRedisStore(&cfg.Redis, log)
	default:
		return cache.NewBadgerStore(cfg.Cache.Dir, log)
	}
}
