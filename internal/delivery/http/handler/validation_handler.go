package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sotkanet-dashboard/internal/pkg/utils"
	"github.com/sotkanet-dashboard/internal/usecase"
)

// ValidationHandler обрабатывает запросы проверки полноты данных
type ValidationHandler struct {
	validationUC *usecase.ValidationUseCase
	indicatorIDs []int
	logger       *zap.Logger
}

// NewValidationHandler создает новый экземпляр ValidationHandler
func NewValidationHandler(
	validationUC *usecase.ValidationUseCase,
	indicatorIDs []int,
	logger *zap.Logger,
) *ValidationHandler {
	return &ValidationHandler{
		validationUC: validationUC,
		indicatorIDs: indicatorIDs,
		logger:       logger,
	}
}

// ValidateIndicator проверяет полноту данных одного показателя
func (h *ValidationHandler) ValidateIndicator(c *fiber.Ctx) error {
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

	result := h.validationUC.Validate(c.Context(), id, region, years, genders)
	return utils.SendSuccess(c, result, nil)
}

// ValidateAll проверяет все настроенные показатели либо явный список
// из параметра indicators
func (h *ValidationHandler) ValidateAll(c *fiber.Ctx) error {
	ids, err := parseIndicatorIDs(c, h.indicatorIDs)
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

	results := h.validationUC.ValidateAll(c.Context(), ids, region, years)
	return utils.SendSuccess(c, results, &utils.Meta{Total: len(results)})
}
