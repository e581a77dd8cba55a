package worker

import (
	"context"
)

// Worker - фоновая задача процесса воркера (обновление метаданных и т.п.)
type Worker interface {
	// Start блокирует до остановки задачи или отмены контекста
	Start(ctx context.Context) error

	// Stop сигнализирует задаче о завершении
	Stop() error

	// Name возвращает имя задачи для логов
	Name() string
}
