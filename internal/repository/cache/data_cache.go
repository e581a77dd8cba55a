package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/sotkanet-dashboard/internal/config"
	"github.com/sotkanet-dashboard/internal/domain"
	"github.com/sotkanet-dashboard/internal/domain/repository"
)

// entry - запись кеша: параметры запроса, payload и метка записи.
// Срок жизни проверяется при чтении; badger/redis TTL не используется,
// чтобы возраст записи был виден и тестируем.
type entry struct {
	Key      string                `json:"key"`
	Query    domain.IndicatorQuery `json:"query"`
	Payload  []domain.DataPoint    `json:"payload"`
	StoredAt time.Time             `json:"stored_at"`
}

// DataCache реализует repository.DataCacheRepository поверх Store.
// Ошибки чтения и записи не фатальны: логируются и трактуются как промах.
type DataCache struct {
	store   Store
	ttl     time.Duration
	enabled bool
	logger  *zap.Logger
	now     func() time.Time
}

// NewDataCache создает кеш ответов API поверх выбранного бэкенда
func NewDataCache(store Store, cfg *config.CacheConfig, logger *zap.Logger) *DataCache {
	return &DataCache{
		store:   store,
		ttl:     cfg.TTL,
		enabled: cfg.Enabled,
		logger:  logger,
		now:     time.Now,
	}
}

var _ repository.DataCacheRepository = (*DataCache)(nil)

// Get возвращает сохранённый payload запроса. Просроченная запись
// лениво удаляется и считается промахом. При выключенном кеше
// всегда промах.
func (c *DataCache) Get(ctx context.Context, query domain.IndicatorQuery) ([]domain.DataPoint, bool, error) {
	if !c.enabled {
		return nil, false, nil
	}

	key := query.CanonicalKey()

	raw, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("Cache read failed, treating as miss",
			zap.String("key", key),
			zap.Error(err))
		return nil, false, nil
	}
	if raw == nil {
		c.logger.Debug("Cache miss", zap.String("key", key))
		return nil, false, nil
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		c.logger.Warn("Corrupt cache entry, dropping",
			zap.String("key", key),
			zap.Error(err))
		if delErr := c.store.Delete(ctx, key); delErr != nil {
			c.logger.Warn("Failed to drop corrupt entry", zap.Error(delErr))
		}
		return nil, false, nil
	}

	age := c.now().Sub(e.StoredAt)
	if age >= c.ttl {
		c.logger.Debug("Cache entry expired",
			zap.String("key", key),
			zap.Duration("age", age))
		if delErr := c.store.Delete(ctx, key); delErr != nil {
			c.logger.Warn("Failed to delete expired entry", zap.Error(delErr))
		}
		return nil, false, nil
	}

	c.logger.Debug("Cache hit",
		zap.String("key", key),
		zap.Int("points", len(e.Payload)))

	// пустой сохранённый результат - валидное попадание
	if e.Payload == nil {
		e.Payload = []domain.DataPoint{}
	}
	return e.Payload, true, nil
}

// Set сохраняет payload под каноническим ключом запроса. Пустые
// результаты тоже кешируются, чтобы не долбить API заведомо пустыми
// запросами.
func (c *DataCache) Set(ctx context.Context, query domain.IndicatorQuery, payload []domain.DataPoint) error {
	if !c.enabled {
		return nil
	}

	key := query.CanonicalKey()

	if payload == nil {
		payload = []domain.DataPoint{}
	}

	raw, err := json.Marshal(entry{
		Key:      key,
		Query:    query,
		Payload:  payload,
		StoredAt: c.now(),
	})
	if err != nil {
		c.logger.Error("Failed to marshal cache entry", zap.Error(err))
		return err
	}

	if err := c.store.Set(ctx, key, raw); err != nil {
		c.logger.Warn("Cache write failed",
			zap.String("key", key),
			zap.Error(err))
		return err
	}

	c.logger.Debug("Cache set",
		zap.String("key", key),
		zap.Int("points", len(payload)))
	return nil
}

// Clear удаляет все записи, best-effort
func (c *DataCache) Clear(ctx context.Context) error {
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Warn("Cache clear failed", zap.Error(err))
		return err
	}
	return nil
}
