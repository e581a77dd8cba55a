package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sotkanet-dashboard/internal/pkg/errors"
	"github.com/sotkanet-dashboard/internal/pkg/utils"
	"github.com/sotkanet-dashboard/internal/pkg/validator"
	"github.com/sotkanet-dashboard/internal/usecase"
	"github.com/sotkanet-dashboard/internal/usecase/dto"
)

// DataHandler обрабатывает запросы данных показателей и производных рядов
type DataHandler struct {
	fetcherUC   *usecase.FetcherUseCase
	processorUC *usecase.ProcessorUseCase
	logger      *zap.Logger
}

// NewDataHandler создает новый экземпляр DataHandler
func NewDataHandler(
	fetcherUC *usecase.FetcherUseCase,
	processorUC *usecase.ProcessorUseCase,
	logger *zap.Logger,
) *DataHandler {
	return &DataHandler{
		fetcherUC:   fetcherUC,
		processorUC: processorUC,
		logger:      logger,
	}
}

// GetData возвращает таблицу показателя. Производные колонки
// включаются query-параметрами growth_rate, moving_avg, normalize,
// outliers.
func (h *DataHandler) GetData(c *fiber.Ctx) error {
	start := time.Now()

	id, err := parseIndicatorID(c)
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

	table := h.fetcherUC.FetchIndicatorData(c.Context(), id, region, years, genders)

	if c.QueryBool("growth_rate") {
		table = h.processorUC.GrowthRate(table)
	}
	if c.QueryBool("moving_avg") {
		table = h.processorUC.MovingAverage(table, c.QueryInt("window", 3))
	}
	if method := c.Query("normalize"); method != "" {
		table, err = h.processorUC.Normalize(table, method)
		if err != nil {
			return utils.SendError(c, err)
		}
	}
	if method := c.Query("outliers"); method != "" {
		table, err = h.processorUC.DetectOutliers(table, method)
		if err != nil {
			return utils.SendError(c, err)
		}
	}

	return utils.SendSuccess(c, table, &utils.Meta{
		Total:    len(table.Rows),
		TimeMSec: float64(time.Since(start).Microseconds()) / 1000,
	})
}

// BatchData загружает несколько показателей одним запросом. Сбой
// отдельного показателя попадает в карту errors, не срывая пакет.
func (h *DataHandler) BatchData(c *fiber.Ctx) error {
	var req dto.BatchRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}
	if err := validator.Validate(&req); err != nil {
		h.logger.Warn("Invalid batch request", zap.Error(err))
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	tables, failures := h.fetcherUC.FetchMultiple(
		c.Context(), req.IndicatorIDs, req.RegionID, req.Years, req.Genders)

	result := dto.BatchResult{Tables: tables}
	if len(failures) > 0 {
		result.Errors = make(map[int]string, len(failures))
		for id, err := range failures {
			result.Errors[id] = err.Error()
		}
	}

	return utils.SendSuccess(c, result, &utils.Meta{Total: len(tables)})
}

// GetStats возвращает сводную статистику по ряду показателя
func (h *DataHandler) GetStats(c *fiber.Ctx) error {
	id, err := parseIndicatorID(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	years, err := parseYears(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	region, err := parseRegion(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	table := h.fetcherUC.FetchIndicatorData(c.Context(), id, region, years, nil)
	stats := h.processorUC.Statistics(table)

	return utils.SendSuccess(c, dto.DataResponse{Table: table, Stats: &stats}, nil)
}

// GetAggregate возвращает ряд показателя, усреднённый по периодам
// (period = yearly | 3year | 5year)
func (h *DataHandler) GetAggregate(c *fiber.Ctx) error {
	id, err := parseIndicatorID(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	years, err := parseYears(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	region, err := parseRegion(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	table := h.fetcherUC.FetchIndicatorData(c.Context(), id, region, years, nil)
	aggregates, err := h.processorUC.AggregateByPeriod(table, c.Query("period", "yearly"))
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, aggregates, &utils.Meta{Total: len(aggregates)})
}

// Compare возвращает длинную таблицу сравнения нескольких показателей
func (h *DataHandler) Compare(c *fiber.Ctx) error {
	ids, err := parseIndicatorIDs(c, nil)
	if err != nil {
		return utils.SendError(c, err)
	}
	if len(ids) == 0 {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}
	years, err := parseYears(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	region, err := parseRegion(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	tables, failures := h.fetcherUC.FetchMultiple(c.Context(), ids, region, years, nil)
	rows := h.processorUC.CompareIndicators(tables)

	if len(failures) > 0 {
		h.logger.Warn("Some indicators failed during comparison",
			zap.Int("failed", len(failures)))
	}

	return utils.SendSuccess(c, rows, &utils.Meta{Total: len(rows)})
}
