package repository

import (
	"context"

	"github.com/sotkanet-dashboard/internal/domain"
)

// DataCacheRepository определяет методы для работы с кешем ответов API.
// Ключ кеша вычисляется из канонизированного запроса, порядок годов и
// полов на ключ не влияет.
type DataCacheRepository interface {
	// Get получает сохранённые точки по запросу. ok=false означает
	// промах: записи нет, она просрочена или кеш выключен. Пустой
	// сохранённый результат - это попадание с пустым payload.
	Get(ctx context.Context, query domain.IndicatorQuery) (payload []domain.DataPoint, ok bool, err error)

	// Set сохраняет payload (включая пустой) с текущей меткой времени
	Set(ctx context.Context, query domain.IndicatorQuery, payload []domain.DataPoint) error

	// Clear удаляет все записи, best-effort
	Clear(ctx context.Context) error
}
