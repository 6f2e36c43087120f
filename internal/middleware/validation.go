package middleware

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"wastelookup/internal/collection"
	apierrors "wastelookup/internal/errors"
)

// Validator validates request parameter structs using struct tags.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator that reports fields by their query
// parameter name and understands the "day" tag (YYYY-MM-DD).
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("day", isDay)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"query", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	return &Validator{validate: v}
}

// ValidateStruct validates a struct and returns an APIError listing every
// failing field.
func (v *Validator) ValidateStruct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierrors.ErrValidation("", err.Error())
	}

	out := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(out)
}

// formatValidationError formats validation error messages
func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "day":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "number", "numeric":
		return fmt.Sprintf("%s must be a number", field)
	case "boolean":
		return fmt.Sprintf("%s must be true or false", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// isDay accepts an empty string or a calendar date in YYYY-MM-DD form.
func isDay(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, err := collection.ParseDay(s)
	return err == nil
}
