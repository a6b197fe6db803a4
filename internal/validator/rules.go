package validator

import (
	"log"

	"filemanager/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules регистрирует все кастомные функции валидации в
// переданном экземпляре валидатора.
func registerCustomRules(v *validator.Validate) {
	// Правило, которое не удалось зарегистрировать, - ошибка запуска
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	// 'is-visibility': public или private
	mustRegister("is-visibility", validateVisibility)

	// 'is-tag-module': tasks/files/folders (и единственное число)
	mustRegister("is-tag-module", validateTagModule)
}

func validateVisibility(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // пустое значение -> private
	}
	_, ok := models.ParseVisibility(value)
	return ok
}

func validateTagModule(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, ok := models.ParseTagModule(value)
	return ok
}
