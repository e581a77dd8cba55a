package usecase

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/sotkanet-dashboard/internal/domain"
)

// TableFetcher отдаёт нормализованные таблицы показателей.
// Реализуется FetcherUseCase; в тестах подменяется моком.
type TableFetcher interface {
	FetchIndicatorData(ctx context.Context, indicatorID, regionID int, years []int, genders []domain.Gender) domain.IndicatorTable
	FetchMultiple(ctx context.Context, indicatorIDs []int, regionID int, years []int, genders []domain.Gender) (map[int]domain.IndicatorTable, map[int]error)
}

// ValidationUseCase проверяет полноту данных показателей за
// запрошенные годы
type ValidationUseCase struct {
	fetcher      TableFetcher
	defaultYears []int
	logger       *zap.Logger
}

// NewValidationUseCase создает новый ValidationUseCase
func NewValidationUseCase(fetcher TableFetcher, defaultYears []int, logger *zap.Logger) *ValidationUseCase {
	return &ValidationUseCase{
		fetcher:      fetcher,
		defaultYears: defaultYears,
		logger:       logger,
	}
}

// Validate считает полноту данных одного показателя.
// Полнота = |доступные годы| / |запрошенные годы| * 100; при пустом
// списке запрошенных годов полнота равна нулю. Ошибки API
// фиксируются в отчёте и наружу не выходят.
func (uc *ValidationUseCase) Validate(
	ctx context.Context,
	indicatorID int,
	regionID int,
	years []int,
	genders []domain.Gender,
) domain.ValidationResult {
	if len(years) == 0 {
		years = uc.defaultYears
	}
	if len(genders) == 0 {
		genders = []domain.Gender{domain.GenderTotal}
	}

	result := domain.ValidationResult{
		IndicatorID:    indicatorID,
		RequestedYears: years,
	}

	tables, failures := uc.fetcher.FetchMultiple(ctx, []int{indicatorID}, regionID, years, genders)
	if err, ok := failures[indicatorID]; ok {
		result.Status = domain.ValidationError
		result.Error = err.Error()
		uc.logger.Error("Validation failed for indicator",
			zap.Int("indicator", indicatorID),
			zap.Error(err))
		return result
	}

	table := tables[indicatorID]
	if table.Empty() {
		result.Status = domain.ValidationNoData
		result.MissingYears = append([]int(nil), years...)
		sort.Ints(result.MissingYears)
		uc.logger.Warn("No data for indicator",
			zap.Int("indicator", indicatorID),
			zap.Int("region", regionID))
		return result
	}

	// годы полноты считаются по полу total, чтобы частично
	// стратифицированные годы не завышали оценку
	totalRows := table.FilterGender(domain.GenderTotal)
	available := totalRows.Years()
	if len(available) == 0 {
		available = table.Years()
	}

	availableSet := make(map[int]struct{}, len(available))
	for _, y := range available {
		availableSet[y] = struct{}{}
	}

	missing := make([]int, 0)
	for _, y := range years {
		if _, ok := availableSet[y]; !ok {
			missing = append(missing, y)
		}
	}
	sort.Ints(missing)

	result.HasData = true
	result.Status = domain.ValidationOK
	result.AvailableYears = available
	result.MissingYears = missing
	result.AvailableGenders = availableGenders(table)
	result.DataPoints = len(table.Rows)
	if len(years) > 0 {
		result.Completeness = float64(len(available)) / float64(len(years)) * 100
	}

	uc.logger.Info("Validated indicator",
		zap.Int("indicator", indicatorID),
		zap.Int("data_points", result.DataPoints),
		zap.Float64("completeness", result.Completeness))

	return result
}

// ValidateAll проверяет список показателей и возвращает отчёты в
// порядке запроса
func (uc *ValidationUseCase) ValidateAll(
	ctx context.Context,
	indicatorIDs []int,
	regionID int,
	years []int,
) []domain.ValidationResult {
	results := make([]domain.ValidationResult, 0, len(indicatorIDs))
	for _, id := range indicatorIDs {
		results = append(results, uc.Validate(ctx, id, regionID, years, nil))
	}
	return results
}

// availableGenders возвращает отсортированный список уникальных полов
// таблицы
func availableGenders(table domain.IndicatorTable) []domain.Gender {
	seen := make(map[domain.Gender]struct{}, 3)
	for _, row := range table.Rows {
		seen[row.Gender] = struct{}{}
	}

	genders := make([]domain.Gender, 0, len(seen))
	for g := range seen {
		genders = append(genders, g)
	}
	sort.Slice(genders, func(i, j int) bool { return genders[i] < genders[j] })
	return genders
}
