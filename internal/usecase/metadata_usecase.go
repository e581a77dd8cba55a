package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/sotkanet-dashboard/internal/config"
	"github.com/sotkanet-dashboard/internal/domain"
	"github.com/sotkanet-dashboard/internal/domain/repository"
	"github.com/sotkanet-dashboard/internal/usecase/dto"
)

const metadataSource = "Sotkanet REST API"

// Предел длины подписи показателя в выпадающем списке
const maxOptionLabel = 80

// MetadataUseCase управляет снимком метаданных показателей.
// Машина состояний снимка: MISSING -> FRESH после первой загрузки,
// FRESH -> STALE по истечении maxAge, любое состояние -> ENV_MISMATCH
// при расхождении окружения или набора показателей.
type MetadataUseCase struct {
	sotkanetRepo repository.SotkanetRepository
	metaRepo     repository.MetadataRepository

	environment     string
	indicatorIDs    []int
	maxAge          time.Duration
	autoRefresh     bool
	fallbackToCache bool

	logger *zap.Logger
	now    func() time.Time
}

// NewMetadataUseCase создает новый MetadataUseCase
func NewMetadataUseCase(
	sotkanetRepo repository.SotkanetRepository,
	metaRepo repository.MetadataRepository,
	cfg *config.Config,
	logger *zap.Logger,
) *MetadataUseCase {
	return &MetadataUseCase{
		sotkanetRepo:    sotkanetRepo,
		metaRepo:        metaRepo,
		environment:     cfg.Env,
		indicatorIDs:    cfg.IndicatorIDs,
		maxAge:          time.Duration(cfg.Metadata.MaxAgeDays) * 24 * time.Hour,
		autoRefresh:     cfg.Metadata.AutoRefresh,
		fallbackToCache: cfg.Metadata.FallbackToCache,
		logger:          logger,
		now:             time.Now,
	}
}

// State классифицирует снимок
func (uc *MetadataUseCase) State(snapshot *domain.MetadataSnapshot) domain.MetadataState {
	if snapshot == nil || len(snapshot.Indicators) == 0 {
		return domain.MetadataMissing
	}
	if !uc.matchesEnvironment(snapshot) {
		return domain.MetadataEnvMismatch
	}
	if uc.isStale(snapshot) {
		return domain.MetadataStale
	}
	return domain.MetadataFresh
}

// Ensure возвращает пригодный снимок метаданных, при необходимости и
// разрешении обновляя его. При сбое обновления откатывается на
// сохранённый снимок, если включён fallbackToCache.
func (uc *MetadataUseCase) Ensure(ctx context.Context) (*domain.MetadataSnapshot, error) {
	snapshot, err := uc.metaRepo.Load()
	if err != nil {
		uc.logger.Error("Failed to load metadata snapshot", zap.Error(err))
		snapshot = nil
	}

	switch uc.State(snapshot) {
	case domain.MetadataFresh:
		uc.logger.Debug("Using cached metadata",
			zap.Int("age_days", uc.ageDays(snapshot)))
		return snapshot, nil

	case domain.MetadataMissing:
		uc.logger.Warn("No metadata found")
		if !uc.autoRefresh {
			return nil, fmt.Errorf("no metadata available: run fetchmeta first")
		}
		uc.logger.Info("Fetching initial metadata")
		return uc.refresh(ctx)

	case domain.MetadataEnvMismatch:
		uc.logger.Warn("Metadata is for different environment or indicator set",
			zap.String("current_env", uc.environment),
			zap.String("snapshot_env", snapshot.Environment),
			zap.Int("current_indicators", len(uc.indicatorIDs)),
			zap.Int("snapshot_indicators", snapshot.IndicatorCount))
		if !uc.autoRefresh {
			return nil, fmt.Errorf("metadata does not match current environment: run fetchmeta")
		}
		return uc.refreshWithFallback(ctx, snapshot)

	default: // STALE
		uc.logger.Info("Metadata is stale",
			zap.Int("age_days", uc.ageDays(snapshot)))
		if !uc.autoRefresh {
			uc.logger.Warn("Auto-refresh disabled, serving stale metadata")
			return snapshot, nil
		}
		return uc.refreshWithFallback(ctx, snapshot)
	}
}

// ForceRefresh обновляет снимок независимо от возраста. Вызывается
// пользователем явно, поэтому ошибки не прячутся.
func (uc *MetadataUseCase) ForceRefresh(ctx context.Context) (*domain.MetadataSnapshot, error) {
	uc.logger.Info("Forcing metadata refresh")
	return uc.refresh(ctx)
}

// Status возвращает диагностику снимка для эндпоинта статуса
func (uc *MetadataUseCase) Status(ctx context.Context) domain.MetadataStatus {
	snapshot, err := uc.metaRepo.Load()
	if err != nil {
		uc.logger.Error("Failed to load metadata snapshot", zap.Error(err))
		snapshot = nil
	}

	if snapshot == nil {
		return domain.MetadataStatus{
			Exists:  false,
			State:   domain.MetadataMissing,
			AgeDays: -1,
			IsStale: true,
		}
	}

	generatedAt := snapshot.GeneratedAt
	return domain.MetadataStatus{
		Exists:             true,
		State:              uc.State(snapshot),
		AgeDays:            uc.ageDays(snapshot),
		IsStale:            uc.isStale(snapshot),
		MatchesEnvironment: uc.matchesEnvironment(snapshot),
		IndicatorCount:     snapshot.IndicatorCount,
		Environment:        snapshot.Environment,
		GeneratedAt:        &generatedAt,
	}
}

// Indicator возвращает метаданные одного показателя из пригодного
// снимка. Реализует MetadataProvider для фетчера.
func (uc *MetadataUseCase) Indicator(ctx context.Context, indicatorID int) (*domain.IndicatorMetadata, bool) {
	snapshot, err := uc.Ensure(ctx)
	if err != nil || snapshot == nil {
		return nil, false
	}
	meta, ok := snapshot.Indicators[strconv.Itoa(indicatorID)]
	if !ok {
		return nil, false
	}
	return &meta, true
}

// Options возвращает подписи показателей для выпадающего списка дашборда
func (uc *MetadataUseCase) Options(ctx context.Context, lang string) []dto.IndicatorOption {
	snapshot, err := uc.Ensure(ctx)
	if err != nil || snapshot == nil {
		return nil
	}

	options := make([]dto.IndicatorOption, 0, len(snapshot.Indicators))
	for _, id := range uc.indicatorIDs {
		meta, ok := snapshot.Indicators[strconv.Itoa(id)]
		if !ok {
			continue
		}
		label := meta.Title.Get(lang)
		if label == "" {
			label = fmt.Sprintf("Indicator %d", id)
		}
		if len([]rune(label)) > maxOptionLabel {
			label = string([]rune(label)[:maxOptionLabel-3]) + "..."
		}
		options = append(options, dto.IndicatorOption{
			Label: fmt.Sprintf("[%d] %s", id, label),
			Value: strconv.Itoa(id),
		})
	}
	return options
}

// refreshWithFallback пытается обновить снимок; при сбое отдаёт
// существующий (устаревший или чужой), если это разрешено настройкой
func (uc *MetadataUseCase) refreshWithFallback(ctx context.Context, snapshot *domain.MetadataSnapshot) (*domain.MetadataSnapshot, error) {
	refreshed, err := uc.refresh(ctx)
	if err == nil {
		return refreshed, nil
	}

	uc.logger.Warn("Failed to refresh metadata", zap.Error(err))
	if uc.fallbackToCache && snapshot != nil {
		uc.logger.Info("Using cached metadata as fallback")
		return snapshot, nil
	}
	return nil, err
}

// refresh загружает метаданные всех настроенных показателей
// последовательно. Сбой отдельного показателя логируется и
// пропускается; пустой результат - ошибка.
func (uc *MetadataUseCase) refresh(ctx context.Context) (*domain.MetadataSnapshot, error) {
	uc.logger.Info("Fetching metadata",
		zap.Int("indicators", len(uc.indicatorIDs)),
		zap.String("environment", uc.environment))

	indicators := make(map[string]domain.IndicatorMetadata, len(uc.indicatorIDs))
	for _, id := range uc.indicatorIDs {
		meta, err := uc.sotkanetRepo.FetchMetadata(ctx, id)
		if err != nil {
			uc.logger.Error("Failed to fetch indicator metadata",
				zap.Int("indicator", id),
				zap.Error(err))
			continue
		}
		indicators[strconv.Itoa(id)] = *meta
		uc.logger.Info("Fetched indicator metadata",
			zap.Int("indicator", id),
			zap.String("title", meta.Title.FI))
	}

	if len(indicators) == 0 {
		return nil, fmt.Errorf("failed to fetch metadata for all %d indicators", len(uc.indicatorIDs))
	}

	snapshot := &domain.MetadataSnapshot{
		GeneratedAt:    uc.now(),
		Environment:    uc.environment,
		Source:         metadataSource,
		IndicatorIDs:   append([]int(nil), uc.indicatorIDs...),
		IndicatorCount: len(indicators),
		Indicators:     indicators,
	}

	if err := uc.metaRepo.Save(snapshot); err != nil {
		// снимок уже получен, работаем с ним и без записи на диск
		uc.logger.Warn("Failed to persist metadata snapshot", zap.Error(err))
	}

	return snapshot, nil
}

func (uc *MetadataUseCase) matchesEnvironment(snapshot *domain.MetadataSnapshot) bool {
	if snapshot.Environment != uc.environment {
		return false
	}

	snapshotIDs := make(map[int]struct{}, len(snapshot.IndicatorIDs))
	for _, id := range snapshot.IndicatorIDs {
		snapshotIDs[id] = struct{}{}
	}
	if len(snapshotIDs) != len(uc.indicatorIDs) {
		return false
	}
	for _, id := range uc.indicatorIDs {
		if _, ok := snapshotIDs[id]; !ok {
			return false
		}
	}

	return snapshot.IndicatorCount == len(uc.indicatorIDs)
}

func (uc *MetadataUseCase) isStale(snapshot *domain.MetadataSnapshot) bool {
	if snapshot.GeneratedAt.IsZero() {
		return true
	}
	return snapshot.Age(uc.now()) > uc.maxAge
}

func (uc *MetadataUseCase) ageDays(snapshot *domain.MetadataSnapshot) int {
	if snapshot == nil || snapshot.GeneratedAt.IsZero() {
		return -1
	}
	return int(snapshot.Age(uc.now()).Hours() / 24)
}
