package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/deppfellow/lightbnb/internal/errs"
	"github.com/go-playground/validator/v10"
)

// Validatable is implemented by input types that know how to validate themselves.
//
// Typical pattern:
// - Define an input struct with validator tags (`validate:"required,email"`)
// - Implement Validate() error that calls validation.Struct(input)
// - Add checks tags cannot express as CustomValidationErrors
type Validatable interface {
	Validate() error
}

// CustomValidationError represents a single validation issue for a specific field.
// Used for rules that cannot be expressed via validator tags.
type CustomValidationError struct {
	Field   string
	Message string
}

// CustomValidationErrors is a slice of custom validation errors that satisfies error.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

var (
	once     sync.Once
	validate *validator.Validate
)

// instance returns the shared validator. Field names in errors come from the
// json tag so they match what API clients send.
func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Struct runs tag validation on v and returns the raw validator error.
func Struct(v any) error {
	return instance().Struct(v)
}

// Check validates payload and converts failures into a KindInvalid *errs.Error
// carrying one errs.FieldError per failing field.
func Check(payload Validatable) error {
	err := payload.Validate()
	if err == nil {
		return nil
	}

	msg, fieldErrors := extractValidationError(err)
	if fieldErrors == nil {
		return errs.ValidationError(err)
	}
	return errs.NewInvalidError(msg, fieldErrors)
}

func extractValidationError(err error) (string, []errs.FieldError) {
	var fieldErrors []errs.FieldError

	var customValidationErrors CustomValidationErrors
	if errors.As(err, &customValidationErrors) {
		for _, e := range customValidationErrors {
			fieldErrors = append(fieldErrors, errs.FieldError{
				Field: e.Field,
				Error: e.Message,
			})
		}
		return "Validation failed", fieldErrors
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "", nil
	}

	for _, e := range validationErrors {
		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: strings.ToLower(e.Field()),
			Error: message(e),
		})
	}

	return "Validation failed", fieldErrors
}

// message turns one validator failure into a user-facing sentence.
func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"

	case "min", "gte":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", e.Param())
		}
		return fmt.Sprintf("must be at least %s", e.Param())

	case "max", "lte":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", e.Param())
		}
		return fmt.Sprintf("must not exceed %s", e.Param())

	case "gt":
		return fmt.Sprintf("must be greater than %s", e.Param())

	case "gtfield":
		return fmt.Sprintf("must be after %s", strings.ToLower(e.Param()))

	case "ltefield":
		return fmt.Sprintf("must not exceed %s", strings.ToLower(e.Param()))

	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())

	case "email":
		return "must be a valid email address"

	case "url":
		return "must be a valid URL"

	default:
		if e.Param() != "" {
			return fmt.Sprintf("%s: %s:%s", strings.ToLower(e.Field()), e.Tag(), e.Param())
		}
		return fmt.Sprintf("%s: %s", strings.ToLower(e.Field()), e.Tag())
	}
}
