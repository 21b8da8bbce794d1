package config

import (
	"reflect"
	"strings"

	"BioVision/internal/annotator"
	"BioVision/internal/export"
	"github.com/go-playground/validator/v10"
)

func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report json field names instead of Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("toolmode", func(fl validator.FieldLevel) bool {
		_, ok := annotator.ParseMode(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("exportformat", func(fl validator.FieldLevel) bool {
		_, ok := export.ParseFormat(fl.Field().String())
		return ok
	})

	return v
}
