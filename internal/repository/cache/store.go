package cache

import "context"

// Store - минимальное байтовое KV-хранилище, общее для бэкендов кеша.
// badger держит записи на локальном диске, redis разделяет кеш между
// процессами (конкурентные записи одного ключа допустимы: последняя
// запись побеждает, payload для одного ключа идентичен по значению).
type Store interface {
	// Get возвращает (nil, nil) при отсутствии ключа
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение под ключом
	Set(ctx context.Context, key string, value []byte) error

	// Delete удаляет ключ; отсутствие ключа - не ошибка
	Delete(ctx context.Context, key string) error

	// Clear удаляет все записи кеша
	Clear(ctx context.Context) error

	// Close закрывает хранилище
	Close() error
}
