package grading

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/bulletin/core"
)

var (
	termTag  = "term"
	termText = "term must be one of: 1er trimestre, 2e trimestre, 3e trimestre"

	evalTypeTag  = "evaltype"
	evalTypeText = "evaluation type must be one of: devoir, composition"
)

// InitValidators registers the grading validators & their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(termTag, termValidation)
	core.RegisterCustomTranslation(validate, translator, termTag, termText)

	_ = validate.RegisterValidation(evalTypeTag, evalTypeValidation)
	core.RegisterCustomTranslation(validate, translator, evalTypeTag, evalTypeText)
}

func termValidation(fl validator.FieldLevel) bool {
	return Term(fl.Field().String()).IsValid()
}

func evalTypeValidation(fl validator.FieldLevel) bool {
	return EvaluationType(fl.Field().String()).IsValid()
}
