package repository

import "github.com/sotkanet-dashboard/internal/domain"

// MetadataRepository определяет методы для работы с сохранённым
// снимком метаданных показателей
type MetadataRepository interface {
	// Load читает снимок с диска; (nil, nil) если файла ещё нет
	Load() (*domain.MetadataSnapshot, error)

	// Save атомарно записывает снимок на диск
	Save(snapshot *domain.MetadataSnapshot) error
}
