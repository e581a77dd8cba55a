package handler

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sotkanet-dashboard/internal/pkg/utils"
	"github.com/sotkanet-dashboard/internal/usecase"
)

// ExportHandler отдаёт данные показателей файлом CSV
type ExportHandler struct {
	exportUC     *usecase.ExportUseCase
	indicatorIDs []int
	logger       *zap.Logger
}

// NewExportHandler создает новый экземпляр ExportHandler
func NewExportHandler(exportUC *usecase.ExportUseCase, indicatorIDs []int, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{
		exportUC:     exportUC,
		indicatorIDs: indicatorIDs,
		logger:       logger,
	}
}

// ExportCSV выгружает таблицы выбранных показателей одним CSV-файлом
func (h *ExportHandler) ExportCSV(c *fiber.Ctx) error {
	ids, err := parseIndicatorIDs(c, h.indicatorIDs)
	if err != nil {
		return utils.SendError(c, err)
	}
	years, err := parseYears(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	genders, err := parseGenders(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	region, err := parseRegion(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	lang, err := parseLang(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	data, err := h.exportUC.ExportCSV(c.Context(), ids, region, years, genders, lang)
	if err != nil {
		h.logger.Error("CSV export failed", zap.Error(err))
		return utils.SendError(c, err)
	}

	filename := fmt.Sprintf("sotkanet_export_%s.csv", time.Now().Format("2006-01-02"))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(data)
}
