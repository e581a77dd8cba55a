package validator

import (
	"github.com/go-playground/validator/v10"

	"github.com/sotkanet-dashboard/internal/domain"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// gender: одно из male/female/total
	_ = validate.RegisterValidation("gender", func(fl validator.FieldLevel) bool {
		return domain.Gender(fl.Field().String()).IsValid()
	})
}

// Validate - валидация структуры
func Validate(s interface{}) error {
	return validate.Struct(s)
}

// GetValidator - получить валидатор для кастомной конфигурации
func GetValidator() *validator.Validate {
	return validate
}
