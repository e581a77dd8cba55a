package domain

import "sort"

// TableRow - одна строка нормализованной таблицы показателя.
// Производные колонки (growth_rate, moving_avg и пр.) заполняются
// процессором и остаются nil, пока не рассчитаны.
type TableRow struct {
	Year       int      `json:"year"`
	Gender     Gender   `json:"gender,omitempty"`
	Value      float64  `json:"value"`
	AbsValue   *float64 `json:"abs_value,omitempty"`
	GrowthRate *float64 `json:"growth_rate,omitempty"`
	MovingAvg  *float64 `json:"moving_avg,omitempty"`
	Normalized *float64 `json:"normalized_value,omitempty"`
	IsOutlier  bool     `json:"is_outlier,omitempty"`
}

// IndicatorTable - нормализованная таблица данных одного показателя,
// которую читают график, статистика и CSV-экспорт
type IndicatorTable struct {
	IndicatorID int        `json:"indicator_id"`
	RegionID    int        `json:"region_id"`
	Rows        []TableRow `json:"rows"`
}

// Empty сообщает, есть ли в таблице хотя бы одна строка
func (t IndicatorTable) Empty() bool {
	return len(t.Rows) == 0
}

// Sort упорядочивает строки по году, затем по полу
func (t *IndicatorTable) Sort() {
	sort.SliceStable(t.Rows, func(i, j int) bool {
		if t.Rows[i].Year != t.Rows[j].Year {
			return t.Rows[i].Year < t.Rows[j].Year
		}
		return t.Rows[i].Gender < t.Rows[j].Gender
	})
}

// FilterGender возвращает новую таблицу только со строками заданного пола
func (t IndicatorTable) FilterGender(g Gender) IndicatorTable {
	filtered := IndicatorTable{
		IndicatorID: t.IndicatorID,
		RegionID:    t.RegionID,
		Rows:        make([]TableRow, 0, len(t.Rows)),
	}
	for _, row := range t.Rows {
		if row.Gender == g {
			filtered.Rows = append(filtered.Rows, row)
		}
	}
	return filtered
}

// Values возвращает значения строк в текущем порядке
func (t IndicatorTable) Values() []float64 {
	values := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row.Value
	}
	return values
}

// Years возвращает отсортированный список уникальных годов таблицы
func (t IndicatorTable) Years() []int {
	seen := make(map[int]struct{}, len(t.Rows))
	years := make([]int, 0, len(t.Rows))
	for _, row := range t.Rows {
		if _, ok := seen[row.Year]; ok {
			continue
		}
		seen[row.Year] = struct{}{}
		years = append(years, row.Year)
	}
	sort.Ints(years)
	return years
}

// SeriesStats - сводная статистика по таблице показателя
type SeriesStats struct {
	LatestValue *float64 `json:"latest_value"`
	LatestYear  *int     `json:"latest_year"`
	MinValue    *float64 `json:"min_value"`
	MaxValue    *float64 `json:"max_value"`
	MeanValue   *float64 `json:"mean_value"`
	MedianValue *float64 `json:"median_value"`
	StdValue    *float64 `json:"std_value"`
	Trend       *float64 `json:"trend"`
	TrendPct    *float64 `json:"trend_pct"`
	DataPoints  int      `json:"data_points"`
}
