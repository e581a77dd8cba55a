package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sotkanet-dashboard/internal/pkg/errors"
	"github.com/sotkanet-dashboard/internal/pkg/utils"
	"github.com/sotkanet-dashboard/internal/usecase"
	"github.com/sotkanet-dashboard/internal/usecase/dto"
)

// MetadataHandler обрабатывает запросы состояния и обновления
// снимка метаданных
type MetadataHandler struct {
	metadataUC *usecase.MetadataUseCase
	logger     *zap.Logger
}

// NewMetadataHandler создает новый экземпляр MetadataHandler
func NewMetadataHandler(metadataUC *usecase.MetadataUseCase, logger *zap.Logger) *MetadataHandler {
	return &MetadataHandler{
		metadataUC: metadataUC,
		logger:     logger,
	}
}

// GetStatus возвращает диагностику снимка метаданных
func (h *MetadataHandler) GetStatus(c *fiber.Ctx) error {
	status := h.metadataUC.Status(c.Context())
	return utils.SendSuccess(c, status, nil)
}

// Refresh принудительно обновляет снимок метаданных. В отличие от
// фонового обновления ошибки здесь возвращаются вызывающему.
func (h *MetadataHandler) Refresh(c *fiber.Ctx) error {
	snapshot, err := h.metadataUC.ForceRefresh(c.Context())
	if err != nil {
		h.logger.Error("Metadata refresh failed", zap.Error(err))
		return utils.SendError(c, errors.ErrUpstreamError)
	}

	return utils.SendSuccess(c, dto.MetadataRefreshResponse{
		IndicatorCount: snapshot.IndicatorCount,
		GeneratedAt:    snapshot.GeneratedAt.Format(time.RFC3339),
		Environment:    snapshot.Environment,
	}, nil)
}
