// Package validation runs struct validation and reports failures as
// apperror validation errors keyed by JSON field name.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"roadbuddy-backend/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

// Validator wraps a validator.Validate configured to report JSON names.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Struct validates s. Field failures come back as a validation error whose
// details map each field to the rule it broke.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperror.NewValidationError(err.Error())
	}

	details := make(map[string]string, len(fieldErrs))
	var names []string
	for _, fe := range fieldErrs {
		details[fe.Field()] = fe.Tag()
		names = append(names, fe.Field())
	}
	return apperror.NewValidationError("invalid fields: " + strings.Join(names, ", ")).WithDetails(details)
}
