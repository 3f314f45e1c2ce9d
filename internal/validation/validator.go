// Wayfinder - Collaborative Filtering Recommendations for Travel Content
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// singleton validator instance
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// sqlIdentifierPattern matches unquoted DuckDB identifiers, optionally schema-qualified.
var sqlIdentifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ValidationError represents a single field validation error with structured information.
type ValidationError struct {
	field   string
	tag     string
	param   string
	value   interface{}
	message string
}

// Field returns the dotted path of the field that failed validation,
// using koanf tag names when present (e.g. "recommend.k_neighbors").
func (e *ValidationError) Field() string {
	return e.field
}

// Tag returns the validation tag that failed.
func (e *ValidationError) Tag() string {
	return e.tag
}

// Param returns the parameter for the validation tag (e.g., "100" for "max=100").
func (e *ValidationError) Param() string {
	return e.param
}

// Value returns the actual value that failed validation.
func (e *ValidationError) Value() interface{} {
	return e.value
}

// Error returns a human-readable error message.
func (e *ValidationError) Error() string {
	return e.message
}

// StructError represents a collection of validation errors for one struct.
type StructError struct {
	errors []ValidationError
}

// Errors returns the slice of validation errors.
func (se *StructError) Errors() []ValidationError {
	return se.errors
}

// Error implements the error interface, returning a combined error message.
func (se *StructError) Error() string {
	if len(se.errors) == 0 {
		return "validation failed"
	}

	messages := make([]string, 0, len(se.errors))
	for i := range se.errors {
		messages = append(messages, se.errors[i].Error())
	}

	return strings.Join(messages, "; ")
}

// HasField reports whether any error refers to the given field path.
func (se *StructError) HasField(field string) bool {
	for i := range se.errors {
		if se.errors[i].field == field {
			return true
		}
	}
	return false
}

// GetValidator returns the singleton validator instance.
// The validator is initialized once with custom validators and options.
// This function is thread-safe.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(tagName)

		// sql_identifier: table names interpolated into DuckDB queries
		if err := validate.RegisterValidation("sql_identifier", validateSQLIdentifier); err != nil {
			panic(fmt.Sprintf("register sql_identifier validator: %v", err))
		}
	})

	return validate
}

// tagName reports the koanf (or json) name of a struct field so error paths
// match the keys users write in config files.
func tagName(fld reflect.StructField) string {
	for _, key := range []string{"koanf", "json"} {
		name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

func validateSQLIdentifier(fl validator.FieldLevel) bool {
	return sqlIdentifierPattern.MatchString(fl.Field().String())
}

// ValidateStruct validates a struct using the singleton validator.
// Returns nil if validation passes, or *StructError if validation fails.
//
// Example:
//
//	if verr := validation.ValidateStruct(cfg); verr != nil {
//	    return fmt.Errorf("invalid config: %w", verr)
//	}
func ValidateStruct(s interface{}) *StructError {
	v := GetValidator()

	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &StructError{
			errors: []ValidationError{
				{
					field:   "unknown",
					tag:     "unknown",
					message: err.Error(),
				},
			},
		}
	}

	fieldErrors := make([]ValidationError, len(validationErrs))
	for i, fieldErr := range validationErrs {
		path := fieldPath(fieldErr)
		fieldErrors[i] = ValidationError{
			field:   path,
			tag:     fieldErr.Tag(),
			param:   fieldErr.Param(),
			value:   fieldErr.Value(),
			message: translateError(fieldErr, path),
		}
	}

	return &StructError{errors: fieldErrors}
}

// fieldPath strips the root struct name from the error namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// errorMessageTemplates maps validation tags to message templates.
var errorMessageTemplates = map[string]string{
	"required":       "%s is required",
	"sql_identifier": "%s must be a plain SQL identifier",
	"dir":            "%s must be an existing directory",
	"file":           "%s must be an existing file",
}

// errorMessageWithParam maps validation tags to templates that include param.
var errorMessageWithParam = map[string]string{
	"oneof":       "%s must be one of: %s",
	"gte":         "%s must be greater than or equal to %s",
	"lte":         "%s must be less than or equal to %s",
	"gt":          "%s must be greater than %s",
	"lt":          "%s must be less than %s",
	"required_if": "%s is required when %s",
	"gtefield":    "%s must be greater than or equal to %s",
}

// translateError converts a validator.FieldError to a human-readable message.
func translateError(fe validator.FieldError, field string) string {
	tag := fe.Tag()
	param := fe.Param()

	if template, ok := errorMessageTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}

	if template, ok := errorMessageWithParam[tag]; ok {
		return fmt.Sprintf(template, field, param)
	}

	return translateMinMax(fe, field, tag, param)
}

// translateMinMax handles min/max validation with type-specific messages.
func translateMinMax(fe validator.FieldError, field, tag, param string) string {
	var unit string
	switch fe.Kind() {
	case reflect.String:
		unit = " characters"
	case reflect.Slice, reflect.Map, reflect.Array:
		unit = " entries"
	}

	switch tag {
	case "min":
		return fmt.Sprintf("%s must be at least %s%s", field, param, unit)
	case "max":
		return fmt.Sprintf("%s must be at most %s%s", field, param, unit)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
