package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sotkanet-dashboard/internal/pkg/errors"
	"github.com/sotkanet-dashboard/internal/pkg/utils"
	"github.com/sotkanet-dashboard/internal/usecase"
)

// IndicatorHandler обрабатывает запросы списка и метаданных показателей
type IndicatorHandler struct {
	metadataUC *usecase.MetadataUseCase
	logger     *zap.Logger
}

// NewIndicatorHandler создает новый экземпляр IndicatorHandler
func NewIndicatorHandler(metadataUC *usecase.MetadataUseCase, logger *zap.Logger) *IndicatorHandler {
	return &IndicatorHandler{
		metadataUC: metadataUC,
		logger:     logger,
	}
}

// ListOptions возвращает подписи настроенных показателей для
// выпадающего списка дашборда
func (h *IndicatorHandler) ListOptions(c *fiber.Ctx) error {
	lang, err := parseLang(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	options := h.metadataUC.Options(c.Context(), lang)
	if options == nil {
		h.logger.Warn("No indicator options available")
		return utils.SendError(c, errors.ErrMetadataUnavailable)
	}

	return utils.SendSuccess(c, options, &utils.Meta{Total: len(options)})
}

// GetMetadata возвращает метаданные одного показателя
func (h *IndicatorHandler) GetMetadata(c *fiber.Ctx) error {
	id, err := parseIndicatorID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	meta, ok := h.metadataUC.Indicator(c.Context(), id)
	if !ok {
		h.logger.Warn("Indicator metadata not found", zap.Int("indicator", id))
		return utils.SendError(c, errors.ErrIndicatorNotFound)
	}

	return utils.SendSuccess(c, meta, nil)
}
