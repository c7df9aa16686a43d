// Package validation wraps go-playground/validator with the rules used by recipe
// and account inputs and translates failures into apperror field maps.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pageza/recipeshare/backend/internal/apperror"
)

// Validator validates request structs by their `validate` tags.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator with the custom rules registered.
func New() *Validator {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	// Register custom validation rules
	_ = validate.RegisterValidation("notblank", validateNotBlank)
	_ = validate.RegisterValidation("wholenumber", validateWholeNumber)

	return &Validator{validate: validate}
}

// Struct validates s and returns an *apperror.Error of kind Validation listing
// every failing field, keyed by its JSON path.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.Internal("validate input", err)
	}
	return apperror.Validation(Fields(verrs))
}

// Fields formats validation errors for API responses.
func Fields(verrs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(verrs))
	for _, e := range verrs {
		key := fieldPath(e)
		if _, exists := fields[key]; exists {
			continue
		}
		fields[key] = message(e)
	}
	return fields
}

// fieldPath drops the root struct name from the namespace, so
// "RecipeDraft.ingredients[0].name" becomes "ingredients[0].name".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return "is required"
	case "wholenumber":
		if e.Param() != "" && e.Param() != "0" {
			return fmt.Sprintf("must be a whole number of at least %s", e.Param())
		}
		return "must be a whole number"
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", e.Param())
	case "min":
		if e.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at least %s item(s)", e.Param())
		}
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		if e.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at most %s items", e.Param())
		}
		return fmt.Sprintf("must be at most %s characters", e.Param())
	default:
		return "is invalid"
	}
}

// validateNotBlank fails strings that are empty after trimming whitespace.
func validateNotBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	return strings.TrimSpace(field.String()) != ""
}

// validateWholeNumber accepts strings that parse as base-10 integers no smaller
// than the optional parameter (default 0).
func validateWholeNumber(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	n, err := strconv.Atoi(strings.TrimSpace(field.String()))
	if err != nil {
		return false
	}
	min := 0
	if p := fl.Param(); p != "" {
		if min, err = strconv.Atoi(p); err != nil {
			return false
		}
	}
	return n >= min
}
