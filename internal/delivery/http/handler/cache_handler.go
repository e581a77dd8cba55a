package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sotkanet-dashboard/internal/domain/repository"
	"github.com/sotkanet-dashboard/internal/pkg/errors"
	"github.com/sotkanet-dashboard/internal/pkg/utils"
)

// CacheHandler управляет кешем данных показателей
type CacheHandler struct {
	cacheRepo repository.DataCacheRepository
	logger    *zap.Logger
}

// NewCacheHandler создает новый экземпляр CacheHandler
func NewCacheHandler(cacheRepo repository.DataCacheRepository, logger *zap.Logger) *CacheHandler {
	return &CacheHandler{
		cacheRepo: cacheRepo,
		logger:    logger,
	}
}

// Clear полностью очищает кеш данных
func (h *CacheHandler) Clear(c *fiber.Ctx) error {
	if err := h.cacheRepo.Clear(c.Context()); err != nil {
		h.logger.Error("Failed to clear cache", zap.Error(err))
		return utils.SendError(c, errors.ErrCacheError)
	}

	h.logger.Info("Cache cleared")
	return utils.SendSuccess(c, fiber.Map{"cleared": true}, nil)
}
