package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/MrJamesThe3rd/invoicer/internal/apperr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// InvalidFields reports the request fields that failed validation.
type InvalidFields struct {
	Fields []FieldError
}

func (e *InvalidFields) Error() string {
	return "Validation failed"
}

func (e *InvalidFields) Unwrap() error {
	return apperr.ErrValidation
}

// Decode reads a JSON body into dst and runs its validate tags.
func Decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validation("Invalid request body")
	}

	return Validate(dst)
}

func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return fmt.Errorf("validating request: %w", err)
	}

	invalid := &InvalidFields{Fields: make([]FieldError, 0, len(fields))}
	for _, f := range fields {
		invalid.Fields = append(invalid.Fields, FieldError{Field: f.Field(), Message: describe(f)})
	}

	return invalid
}

func describe(f validator.FieldError) string {
	switch f.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return fmt.Sprintf("must be at least %s characters", f.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", f.Param())
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(f.Param(), " ", ", ")
	default:
		return "is invalid"
	}
}
