package usecase

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/sotkanet-dashboard/internal/domain"
	"github.com/sotkanet-dashboard/internal/usecase/dto"
)

// Методы нормализации и поиска выбросов
const (
	NormalizeMinMax = "minmax"
	NormalizeZScore = "zscore"

	OutlierIQR    = "iqr"
	OutlierZScore = "zscore"
)

const (
	defaultMovingWindow = 3
	iqrMultiplier       = 1.5
	zscoreThreshold     = 3.0
)

// ProcessorUseCase вычисляет производные ряды и сводную статистику
// поверх таблиц показателей. Чистые вычисления, без ввода-вывода.
type ProcessorUseCase struct {
	logger *zap.Logger
}

// NewProcessorUseCase создает новый ProcessorUseCase
func NewProcessorUseCase(logger *zap.Logger) *ProcessorUseCase {
	return &ProcessorUseCase{logger: logger}
}

// Statistics считает сводную статистику по ряду total. Если строк total
// нет, берутся все строки таблицы.
func (uc *ProcessorUseCase) Statistics(table domain.IndicatorTable) domain.SeriesStats {
	series := table.FilterGender(domain.GenderTotal)
	if series.Empty() {
		series = table
	}

	stats := domain.SeriesStats{DataPoints: len(series.Rows)}
	if series.Empty() {
		return stats
	}

	values := series.Values()
	last := series.Rows[len(series.Rows)-1]
	first := series.Rows[0]

	stats.LatestValue = floatPtr(last.Value)
	stats.LatestYear = intPtr(last.Year)
	stats.MinValue = floatPtr(minOf(values))
	stats.MaxValue = floatPtr(maxOf(values))
	stats.MeanValue = floatPtr(mean(values))
	stats.MedianValue = floatPtr(quantile(values, 0.5))

	if std, ok := stddev(values); ok {
		stats.StdValue = floatPtr(std)
	}

	trend := last.Value - first.Value
	stats.Trend = floatPtr(trend)
	if first.Value != 0 {
		stats.TrendPct = floatPtr(trend / first.Value * 100)
	}

	return stats
}

// GrowthRate заполняет колонку годового прироста в процентах.
// Считается отдельно для каждого пола; первая строка ряда и строки
// после нулевого значения остаются без прироста.
func (uc *ProcessorUseCase) GrowthRate(table domain.IndicatorTable) domain.IndicatorTable {
	out := cloneTable(table)
	forEachGenderSeries(out, func(idx []int) {
		for i := 1; i < len(idx); i++ {
			prev := out.Rows[idx[i-1]].Value
			if prev == 0 {
				continue
			}
			cur := out.Rows[idx[i]].Value
			out.Rows[idx[i]].GrowthRate = floatPtr((cur - prev) / prev * 100)
		}
	})
	return out
}

// MovingAverage заполняет центрированное скользящее среднее.
// Окно должно быть нечётным; у краёв ряда, где полное окно не
// помещается, значение остаётся пустым.
func (uc *ProcessorUseCase) MovingAverage(table domain.IndicatorTable, window int) domain.IndicatorTable {
	if window <= 0 {
		window = defaultMovingWindow
	}
	if window%2 == 0 {
		window++
	}
	half := window / 2

	out := cloneTable(table)
	forEachGenderSeries(out, func(idx []int) {
		for i := half; i < len(idx)-half; i++ {
			sum := 0.0
			for j := i - half; j <= i+half; j++ {
				sum += out.Rows[idx[j]].Value
			}
			out.Rows[idx[i]].MovingAvg = floatPtr(sum / float64(window))
		}
	})
	return out
}

// Normalize заполняет нормализованные значения методом minmax или
// zscore. При вырожденном ряде (нулевой размах или разброс)
// нормализация пропускается.
func (uc *ProcessorUseCase) Normalize(table domain.IndicatorTable, method string) (domain.IndicatorTable, error) {
	if method != NormalizeMinMax && method != NormalizeZScore {
		return table, fmt.Errorf("unknown normalization method: %s", method)
	}

	out := cloneTable(table)
	forEachGenderSeries(out, func(idx []int) {
		values := make([]float64, len(idx))
		for i, ri := range idx {
			values[i] = out.Rows[ri].Value
		}

		switch method {
		case NormalizeMinMax:
			lo, hi := minOf(values), maxOf(values)
			if hi == lo {
				return
			}
			for _, ri := range idx {
				out.Rows[ri].Normalized = floatPtr((out.Rows[ri].Value - lo) / (hi - lo))
			}
		case NormalizeZScore:
			std, ok := stddev(values)
			if !ok || std == 0 {
				return
			}
			m := mean(values)
			for _, ri := range idx {
				out.Rows[ri].Normalized = floatPtr((out.Rows[ri].Value - m) / std)
			}
		}
	})
	return out, nil
}

// DetectOutliers помечает выбросы методом iqr (границы
// Q1-1.5*IQR .. Q3+1.5*IQR) или zscore (|z| > 3)
func (uc *ProcessorUseCase) DetectOutliers(table domain.IndicatorTable, method string) (domain.IndicatorTable, error) {
	if method != OutlierIQR && method != OutlierZScore {
		return table, fmt.Errorf("unknown outlier method: %s", method)
	}

	out := cloneTable(table)
	outliers := 0
	forEachGenderSeries(out, func(idx []int) {
		values := make([]float64, len(idx))
		for i, ri := range idx {
			values[i] = out.Rows[ri].Value
		}

		switch method {
		case OutlierIQR:
			if len(values) < 4 {
				return
			}
			q1 := quantile(values, 0.25)
			q3 := quantile(values, 0.75)
			iqr := q3 - q1
			lo := q1 - iqrMultiplier*iqr
			hi := q3 + iqrMultiplier*iqr
			for _, ri := range idx {
				if v := out.Rows[ri].Value; v < lo || v > hi {
					out.Rows[ri].IsOutlier = true
					outliers++
				}
			}
		case OutlierZScore:
			std, ok := stddev(values)
			if !ok || std == 0 {
				return
			}
			m := mean(values)
			for _, ri := range idx {
				if math.Abs((out.Rows[ri].Value-m)/std) > zscoreThreshold {
					out.Rows[ri].IsOutlier = true
					outliers++
				}
			}
		}
	})

	if outliers > 0 {
		uc.logger.Info("Detected outliers",
			zap.Int("indicator", table.IndicatorID),
			zap.String("method", method),
			zap.Int("count", outliers))
	}
	return out, nil
}

// CompareIndicators строит длинную таблицу сравнения по рядам total
// нескольких показателей, отсортированную по показателю и году
func (uc *ProcessorUseCase) CompareIndicators(tables map[int]domain.IndicatorTable) []dto.ComparisonRow {
	ids := make([]int, 0, len(tables))
	for id := range tables {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	rows := make([]dto.ComparisonRow, 0)
	for _, id := range ids {
		series := tables[id].FilterGender(domain.GenderTotal)
		for _, row := range series.Rows {
			rows = append(rows, dto.ComparisonRow{
				IndicatorID: id,
				Year:        row.Year,
				Value:       row.Value,
			})
		}
	}
	return rows
}

// AggregateByPeriod усредняет ряд total по периодам: yearly, 3year
// или 5year. Периоды выравниваются по первому году ряда.
func (uc *ProcessorUseCase) AggregateByPeriod(table domain.IndicatorTable, period string) ([]dto.PeriodAggregate, error) {
	var span int
	switch period {
	case "yearly":
		span = 1
	case "3year":
		span = 3
	case "5year":
		span = 5
	default:
		return nil, fmt.Errorf("unknown aggregation period: %s", period)
	}

	series := table.FilterGender(domain.GenderTotal)
	if series.Empty() {
		return []dto.PeriodAggregate{}, nil
	}

	base := series.Rows[0].Year
	buckets := make(map[int][]float64)
	for _, row := range series.Rows {
		bucket := (row.Year - base) / span
		buckets[bucket] = append(buckets[bucket], row.Value)
	}

	keys := make([]int, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	aggregates := make([]dto.PeriodAggregate, 0, len(keys))
	for _, k := range keys {
		start := base + k*span
		label := fmt.Sprintf("%d", start)
		if span > 1 {
			label = fmt.Sprintf("%d-%d", start, start+span-1)
		}
		aggregates = append(aggregates, dto.PeriodAggregate{
			Period:    label,
			MeanValue: mean(buckets[k]),
			Years:     len(buckets[k]),
		})
	}
	return aggregates, nil
}

func cloneTable(table domain.IndicatorTable) domain.IndicatorTable {
	out := table
	out.Rows = make([]domain.TableRow, len(table.Rows))
	copy(out.Rows, table.Rows)
	return out
}

// forEachGenderSeries вызывает fn для индексов строк каждого пола,
// в порядке следования строк таблицы
func forEachGenderSeries(table domain.IndicatorTable, fn func(idx []int)) {
	byGender := make(map[domain.Gender][]int)
	for i, row := range table.Rows {
		byGender[row.Gender] = append(byGender[row.Gender], i)
	}
	for _, g := range domain.AllGenders() {
		if idx, ok := byGender[g]; ok {
			fn(idx)
		}
	}
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stddev возвращает выборочное стандартное отклонение; false, если
// точек меньше двух
func stddev(values []float64) (float64, bool) {
	if len(values) < 2 {
		return 0, false
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1)), true
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// quantile считает квантиль с линейной интерполяцией между соседними
// порядковыми статистиками
func quantile(values []float64, q float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }
