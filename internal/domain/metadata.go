package domain

import "time"

// LocalizedText - заголовок на поддерживаемых языках (fi, sv, en)
type LocalizedText struct {
	FI string `json:"fi"`
	SV string `json:"sv,omitempty"`
	EN string `json:"en,omitempty"`
}

// Get возвращает текст на запрошенном языке с откатом на финский
func (t LocalizedText) Get(lang string) string {
	switch lang {
	case "sv":
		if t.SV != "" {
			return t.SV
		}
	case "en":
		if t.EN != "" {
			return t.EN
		}
	}
	return t.FI
}

// YearRange - известный диапазон данных показателя
type YearRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Clip возвращает пересечение запрошенных годов с диапазоном,
// сохраняя исходный порядок
func (r YearRange) Clip(years []int) []int {
	clipped := make([]int, 0, len(years))
	for _, y := range years {
		if y >= r.Start && y <= r.End {
			clipped = append(clipped, y)
		}
	}
	return clipped
}

// Organization - организация-источник показателя
type Organization struct {
	Title LocalizedText `json:"title"`
}

// IndicatorMetadata - метаданные одного показателя Sotkanet
type IndicatorMetadata struct {
	ID           int           `json:"id"`
	Title        LocalizedText `json:"title"`
	Organization Organization  `json:"organization"`
	Unit         string        `json:"unit,omitempty"`
	Decimals     int           `json:"decimals"`
	DataUpdated  string        `json:"data-updated,omitempty"`
	Range        *YearRange    `json:"range,omitempty"`
}

// MetadataSnapshot - сохраняемый на диск снимок метаданных всех
// сконфигурированных показателей
type MetadataSnapshot struct {
	GeneratedAt    time.Time                    `json:"generated_at"`
	Environment    string                       `json:"environment"`
	Source         string                       `json:"source"`
	IndicatorIDs   []int                        `json:"indicator_ids"`
	IndicatorCount int                          `json:"indicator_count"`
	Indicators     map[string]IndicatorMetadata `json:"indicators"`
}

// Age возвращает возраст снимка относительно now
func (s *MetadataSnapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.GeneratedAt)
}

// MetadataState - состояние снимка метаданных
type MetadataState string

const (
	MetadataMissing     MetadataState = "MISSING"
	MetadataFresh       MetadataState = "FRESH"
	MetadataStale       MetadataState = "STALE"
	MetadataEnvMismatch MetadataState = "ENV_MISMATCH"
)

// MetadataStatus - диагностика снимка для эндпоинта статуса
type MetadataStatus struct {
	Exists             bool          `json:"exists"`
	State              MetadataState `json:"state"`
	AgeDays            int           `json:"age_days"`
	IsStale            bool          `json:"is_stale"`
	MatchesEnvironment bool          `json:"matches_environment"`
	IndicatorCount     int           `json:"indicator_count"`
	Environment        string        `json:"environment,omitempty"`
	GeneratedAt        *time.Time    `json:"generated_at,omitempty"`
}
