package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sotkanet-dashboard/internal/config"
	"github.com/sotkanet-dashboard/internal/domain"
	"github.com/sotkanet-dashboard/internal/infrastructure/sotkanet"
	"github.com/sotkanet-dashboard/internal/pkg/logger"
	"github.com/sotkanet-dashboard/internal/repository/cache"
	repo "github.com/sotkanet-dashboard/internal/repository/metadata"
	"github.com/sotkanet-dashboard/internal/usecase"
)

// validate прогоняет проверку полноты данных по настроенным
// показателям и печатает отчёт. Ненулевой код выхода, если хотя бы
// один показатель завершился статусом ERROR.
func main() {
	region := flag.Int("region", 0, "region id (default from config)")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall timeout for the run")
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

	store, err := cache.NewBadgerStore(cfg.Cache.Dir, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open cache: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	dataCache := cache.NewDataCache(store, &cfg.Cache, log)
	metadataRepo := repo.NewFileRepository(cfg.Metadata.File, log)
	metadataUC := usecase.NewMetadataUseCase(sotkanetClient, metadataRepo, cfg, log)
	fetcherUC := usecase.NewFetcherUseCase(sotkanetClient, dataCache, metadataUC, &cfg.Sotkanet, log)
	validationUC := usecase.NewValidationUseCase(fetcherUC, cfg.Sotkanet.DefaultYears(), log)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	results := validationUC.ValidateAll(ctx, cfg.IndicatorIDs, *region, nil)

	fmt.Printf("Validation report (%s, region %d)\n", cfg.Env, resolveRegion(*region, cfg))
	fmt.Println(strings.Repeat("-", 60))

	failed := false
	for _, r := range results {
		switch r.Status {
		case domain.ValidationOK:
			fmt.Printf("  [%d] OK: %d points, completeness %.1f%%\n",
				r.IndicatorID, r.DataPoints, r.Completeness)
			if len(r.MissingYears) > 0 {
				fmt.Printf("        missing years: %v\n", r.MissingYears)
			}
		case domain.ValidationNoData:
			fmt.Printf("  [%d] NO_DATA\n", r.IndicatorID)
		default:
			failed = true
			fmt.Printf("  [%d] ERROR: %s\n", r.IndicatorID, r.Error)
		}
	}

	if failed {
		os.Exit(1)
	}
}

func resolveRegion(region int, cfg *config.Config) int {
	if region == 0 {
		return cfg.Sotkanet.RegionID
	}
	return region
}
