package repository

import (
	"context"

	"github.com/sotkanet-dashboard/internal/domain"
)

// SotkanetRepository определяет методы для работы с Sotkanet REST API
type SotkanetRepository interface {
	// FetchData возвращает точки данных показателя, отфильтрованные
	// по региону запроса
	FetchData(ctx context.Context, query domain.IndicatorQuery) ([]domain.DataPoint, error)

	// FetchMetadata возвращает метаданные одного показателя
	FetchMetadata(ctx context.Context, indicatorID int) (*domain.IndicatorMetadata, error)

	// FetchRegions возвращает справочник регионов
	FetchRegions(ctx context.Context) ([]domain.Region, error)

	// Close освобождает пул соединений
	Close() error
}
