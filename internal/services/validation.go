package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"bookheaven/internal/apperrors"

	"github.com/go-playground/validator/v10"
)

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validate runs struct validation and converts failures to a ValidationError.
func validate(v *validator.Validate, input interface{}) error {
	err := v.Struct(input)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("failed to validate input: %w", err)
	}

	message := "Validation failed"
	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			message = "Missing required fields"
			fields[e.Field()] = "is required"
		case "min":
			fields[e.Field()] = "must not be empty"
		case "gte":
			fields[e.Field()] = "must be at least " + e.Param()
		default:
			fields[e.Field()] = fmt.Sprintf("failed on the '%s' tag", e.Tag())
		}
	}
	return &apperrors.ValidationError{Message: message, Fields: fields}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
