package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/sotkanet-dashboard/internal/config"
	"github.com/sotkanet-dashboard/internal/domain"
	"github.com/sotkanet-dashboard/internal/domain/repository"
)

// MetadataProvider отдаёт метаданные показателя для отсечения годов.
// Реализуется MetadataUseCase; в тестах подменяется моком.
type MetadataProvider interface {
	Indicator(ctx context.Context, indicatorID int) (*domain.IndicatorMetadata, bool)
}

// FetcherUseCase - точка оркестрации между кешем, клиентом API и
// проверками по метаданным
type FetcherUseCase struct {
	sotkanetRepo repository.SotkanetRepository
	cacheRepo    repository.DataCacheRepository
	metadata     MetadataProvider
	regionID     int
	defaultYears []int
	logger       *zap.Logger
}

// NewFetcherUseCase создает новый FetcherUseCase
func NewFetcherUseCase(
	sotkanetRepo repository.SotkanetRepository,
	cacheRepo repository.DataCacheRepository,
	metadata MetadataProvider,
	cfg *config.SotkanetConfig,
	logger *zap.Logger,
) *FetcherUseCase {
	return &FetcherUseCase{
		sotkanetRepo: sotkanetRepo,
		cacheRepo:    cacheRepo,
		metadata:     metadata,
		regionID:     cfg.RegionID,
		defaultYears: cfg.DefaultYears(),
		logger:       logger,
	}
}

// FetchIndicatorData возвращает нормализованную таблицу показателя.
// Никогда не возвращает ошибку вызывающему: любой сбой деградирует в
// пустую таблицу, чтобы дашборд оставался отзывчивым.
func (uc *FetcherUseCase) FetchIndicatorData(
	ctx context.Context,
	indicatorID int,
	regionID int,
	years []int,
	genders []domain.Gender,
) domain.IndicatorTable {
	table, err := uc.fetch(ctx, indicatorID, regionID, years, genders)
	if err != nil {
		uc.logger.Error("Failed to fetch indicator data, returning empty table",
			zap.Int("indicator", indicatorID),
			zap.Error(err))
		return domain.IndicatorTable{IndicatorID: indicatorID, RegionID: uc.resolveRegion(regionID)}
	}
	return table
}

// FetchMultiple загружает несколько показателей последовательно.
// Сбой одного показателя логируется и собирается в карту ошибок,
// не прерывая пакет.
func (uc *FetcherUseCase) FetchMultiple(
	ctx context.Context,
	indicatorIDs []int,
	regionID int,
	years []int,
	genders []domain.Gender,
) (map[int]domain.IndicatorTable, map[int]error) {
	tables := make(map[int]domain.IndicatorTable, len(indicatorIDs))
	failures := make(map[int]error)

	for _, id := range indicatorIDs {
		table, err := uc.fetch(ctx, id, regionID, years, genders)
		if err != nil {
			uc.logger.Warn("Failed to fetch indicator in batch",
				zap.Int("indicator", id),
				zap.Error(err))
			failures[id] = err
			continue
		}
		tables[id] = table
	}

	uc.logger.Info("Batch fetch finished",
		zap.Int("requested", len(indicatorIDs)),
		zap.Int("fetched", len(tables)),
		zap.Int("failed", len(failures)))

	return tables, failures
}

// LatestValue возвращает последнее известное значение показателя по
// полу total. Контракт параметров фиксирован: (indicatorID, regionID);
// годы всегда берутся из настроек с отсечением по метаданным.
func (uc *FetcherUseCase) LatestValue(ctx context.Context, indicatorID int, regionID int) (value *float64, year *int) {
	table := uc.FetchIndicatorData(ctx, indicatorID, regionID, nil, []domain.Gender{domain.GenderTotal})
	if table.Empty() {
		return nil, nil
	}
	last := table.Rows[len(table.Rows)-1]
	return &last.Value, &last.Year
}

func (uc *FetcherUseCase) fetch(
	ctx context.Context,
	indicatorID int,
	regionID int,
	years []int,
	genders []domain.Gender,
) (domain.IndicatorTable, error) {
	regionID = uc.resolveRegion(regionID)
	if len(years) == 0 {
		years = uc.defaultYears
	}
	if len(genders) == 0 {
		genders = domain.AllGenders()
	}

	empty := domain.IndicatorTable{IndicatorID: indicatorID, RegionID: regionID}

	// Отсечение по известному диапазону данных: пустое пересечение
	// означает гарантированно пустой ответ, сетевой вызов не нужен
	if meta, ok := uc.metadata.Indicator(ctx, indicatorID); ok && meta.Range != nil {
		clipped := meta.Range.Clip(years)
		if len(clipped) == 0 {
			uc.logger.Info("Requested years outside indicator data range, skipping fetch",
				zap.Int("indicator", indicatorID),
				zap.Ints("years", years),
				zap.Int("range_start", meta.Range.Start),
				zap.Int("range_end", meta.Range.End))
			return empty, nil
		}
		years = clipped
	}

	query := domain.IndicatorQuery{
		IndicatorID: indicatorID,
		RegionID:    regionID,
		Years:       years,
		Genders:     genders,
	}

	if payload, ok, err := uc.cacheRepo.Get(ctx, query); err == nil && ok {
		uc.logger.Debug("Indicator data served from cache",
			zap.Int("indicator", indicatorID),
			zap.Int("points", len(payload)))
		return buildTable(query, payload), nil
	}

	points, err := uc.sotkanetRepo.FetchData(ctx, query)
	if err != nil {
		return empty, err
	}

	// write-through, включая пустые результаты
	if err := uc.cacheRepo.Set(ctx, query, points); err != nil {
		uc.logger.Warn("Failed to cache indicator data",
			zap.Int("indicator", indicatorID),
			zap.Error(err))
	}

	return buildTable(query, points), nil
}

func (uc *FetcherUseCase) resolveRegion(regionID int) int {
	if regionID == 0 {
		return uc.regionID
	}
	return regionID
}

// buildTable превращает точки API в таблицу: строки без года или
// значения отбрасываются, остальные сортируются по году, затем по полу
func buildTable(query domain.IndicatorQuery, points []domain.DataPoint) domain.IndicatorTable {
	table := domain.IndicatorTable{
		IndicatorID: query.IndicatorID,
		RegionID:    query.RegionID,
		Rows:        make([]domain.TableRow, 0, len(points)),
	}

	for _, p := range points {
		if p.Year == 0 || p.Value == nil {
			continue
		}
		table.Rows = append(table.Rows, domain.TableRow{
			Year:     p.Year,
			Gender:   p.Gender,
			Value:    *p.Value,
			AbsValue: p.AbsValue,
		})
	}

	table.Sort()
	return table
}
