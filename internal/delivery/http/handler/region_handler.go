package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sotkanet-dashboard/internal/domain/repository"
	"github.com/sotkanet-dashboard/internal/pkg/errors"
	"github.com/sotkanet-dashboard/internal/pkg/utils"
)

// RegionHandler отдаёт справочник регионов Sotkanet
type RegionHandler struct {
	sotkanetRepo repository.SotkanetRepository
	logger       *zap.Logger
}

// NewRegionHandler создает новый экземпляр RegionHandler
func NewRegionHandler(sotkanetRepo repository.SotkanetRepository, logger *zap.Logger) *RegionHandler {
	return &RegionHandler{
		sotkanetRepo: sotkanetRepo,
		logger:       logger,
	}
}

// ListRegions возвращает список регионов из API
func (h *RegionHandler) ListRegions(c *fiber.Ctx) error {
	regions, err := h.sotkanetRepo.FetchRegions(c.Context())
	if err != nil {
		h.logger.Error("Failed to fetch regions", zap.Error(err))
		return utils.SendError(c, errors.ErrUpstreamError)
	}

	return utils.SendSuccess(c, regions, &utils.Meta{Total: len(regions)})
}
