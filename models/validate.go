package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// global validator instance
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their wire names so errors match the input documents.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, key := range []string{"json", "mapstructure"} {
			name := strings.SplitN(f.Tag.Get(key), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
}

// FieldError describes the first rule a struct failed.
type FieldError struct {
	Field string // dotted path, e.g. tasks[0].points
	Rule  string
	Param string
	Value interface{}
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field '%s' %s", e.Field, e.Reason())
}

// Reason describes the violated rule without the field name.
func (e *FieldError) Reason() string {
	switch e.Rule {
	case "required":
		return "is required"
	case "gte":
		return fmt.Sprintf("must be >= %s (value: '%v')", e.Param, e.Value)
	case "min":
		return fmt.Sprintf("must have length >= %s", e.Param)
	default:
		return fmt.Sprintf("failed rule '%s' (value: '%v')", e.Rule, e.Value)
	}
}

// ValidateStruct runs the validate tags of s and returns a *FieldError for
// the first violation.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return err
	}
	first := validationErrors[0]
	return &FieldError{
		Field: trimRoot(first.Namespace()),
		Rule:  first.Tag(),
		Param: first.Param(),
		Value: first.Value(),
	}
}

// trimRoot drops the top-level struct name from a validator namespace.
func trimRoot(namespace string) string {
	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}
	return namespace
}
