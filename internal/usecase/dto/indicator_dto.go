package dto

import "github.com/sotkanet-dashboard/internal/domain"

// IndicatorOption - элемент выпадающего списка показателей на дашборде
type IndicatorOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// BatchRequest - пакетный запрос данных нескольких показателей
type BatchRequest struct {
	IndicatorIDs []int           `json:"indicator_ids" validate:"required,min=1,dive,min=1"`
	RegionID     int             `json:"region_id" validate:"omitempty,min=1"`
	Years        []int           `json:"years" validate:"omitempty,dive,min=1990,max=2100"`
	Genders      []domain.Gender `json:"genders" validate:"omitempty,dive,gender"`
}

// DataResponse - таблица показателя с её сводной статистикой
type DataResponse struct {
	Table  domain.IndicatorTable `json:"table"`
	Stats  *domain.SeriesStats   `json:"stats,omitempty"`
	Cached bool                  `json:"-"`
}

// ComparisonRow - строка сводной таблицы сравнения показателей
type ComparisonRow struct {
	IndicatorID int     `json:"indicator_id"`
	Year        int     `json:"year"`
	Value       float64 `json:"value"`
}

// BatchResult - результат пакетной загрузки нескольких показателей.
// Сбой одного показателя не срывает пакет: ошибки собираются отдельно
// по идентификаторам.
type BatchResult struct {
	Tables map[int]domain.IndicatorTable `json:"tables"`
	Errors map[int]string                `json:"errors,omitempty"`
}

// PeriodAggregate - усреднение ряда по периоду лет
type PeriodAggregate struct {
	Period    string  `json:"period"`
	MeanValue float64 `json:"mean_value"`
	Years     int     `json:"years"`
}

// MetadataRefreshResponse - итог принудительного обновления метаданных
type MetadataRefreshResponse struct {
	IndicatorCount int    `json:"indicator_count"`
	GeneratedAt    string `json:"generated_at"`
	Environment    string `json:"environment"`
}
