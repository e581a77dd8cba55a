package domain

// ValidationStatus - итог проверки доступности данных
type ValidationStatus string

const (
	ValidationOK     ValidationStatus = "OK"
	ValidationNoData ValidationStatus = "NO_DATA"
	ValidationError  ValidationStatus = "ERROR"
)

// ValidationResult - отчёт о полноте данных показателя для региона.
// Completeness = |available_years| / |requested_years| * 100,
// ноль при пустом списке запрошенных годов.
type ValidationResult struct {
	IndicatorID      int              `json:"indicator_id"`
	HasData          bool             `json:"has_data"`
	RequestedYears   []int            `json:"requested_years,omitempty"`
	AvailableYears   []int            `json:"available_years,omitempty"`
	MissingYears     []int            `json:"missing_years,omitempty"`
	AvailableGenders []Gender         `json:"available_genders,omitempty"`
	DataPoints       int              `json:"data_points"`
	Completeness     float64          `json:"completeness"`
	Status           ValidationStatus `json:"status"`
	Error            string           `json:"error,omitempty"`
}
