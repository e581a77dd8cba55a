package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/sotkanet-dashboard/internal/config"
	"github.com/sotkanet-dashboard/internal/infrastructure/sotkanet"
	"github.com/sotkanet-dashboard/internal/pkg/logger"
	repo "github.com/sotkanet-dashboard/internal/repository/metadata"
	"github.com/sotkanet-dashboard/internal/usecase"
)

// fetchmeta загружает метаданные всех настроенных показателей и
// сохраняет снимок на диск. Запускается вручную или из cron.
func main() {
	timeout := flag.Duration("timeout", 5*time.Minute, "overall timeout for the fetch")
	quiet := flag.Bool("quiet", false, "suppress the per-indicator summary")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	sotkanetClient := sotkanet.NewClient(&cfg.Sotkanet, log)
	defer sotkanetClient.Close()

	metadataRepo := repo.NewFileRepository(cfg.Metadata.File, log)
	metadataUC := usecase.NewMetadataUseCase(sotkanetClient, metadataRepo, cfg, log)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	snapshot, err := metadataUC.ForceRefresh(ctx)
	if err != nil {
		log.Error("Metadata fetch failed", zap.Error(err))
		os.Exit(1)
	}

	fmt.Printf("Fetched metadata for %d/%d indicators (%s)\n",
		snapshot.IndicatorCount, len(cfg.IndicatorIDs), cfg.Env)
	fmt.Printf("Snapshot written to %s\n", cfg.Metadata.File)

	if *quiet {
		return
	}

	keys := make([]string, 0, len(snapshot.Indicators))
	for k := range snapshot.Indicators {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		meta := snapshot.Indicators[k]
		unit := meta.Unit
		if unit == "" {
			unit = "-"
		}
		fmt.Printf("  [%s] %s (unit: %s)\n", k, meta.Title.FI, unit)
	}
}
