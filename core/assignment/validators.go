package assignment

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

var (
	dateOnlyTag    = "dateonly"
	dateOnlyText   = "must be a valid date in YYYY-MM-DD format"
	dateOnlyLayout = "2006-01-02"
)

// InitValidators registers the assignment validators & translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(dateOnlyTag, dateOnlyValidation)
	core.RegisterCustomTranslation(validate, translator, dateOnlyTag, dateOnlyText)
}

func dateOnlyValidation(fl validator.FieldLevel) bool {
	_, err := time.Parse(dateOnlyLayout, fl.Field().String())
	return err == nil
}
