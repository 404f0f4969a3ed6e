package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/jobpost-server/internal/apperror"
)

// Validator wraps a validator.Validate configured for request inputs.
//
// FIELD NAMES:
// By default validator reports Go field names ("MinPrice"). The client only
// knows the JSON names ("min_price"), so the json tag is registered as the
// field name and errors point at what the client actually sent.
//
// validator.Validate caches struct metadata and is safe for concurrent use,
// so one instance is shared by all services.
type Validator struct {
	v *validator.Validate
}

// NewValidator returns a Validator that reports JSON field names.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

// Struct validates s and converts the first failure into an
// apperror.ValidationFailed naming the offending field, e.g. "buyer.email".
func (val *Validator) Struct(s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("service: validating %T: %w", s, err)
	}

	fe := verrs[0]
	field := fieldPath(fe.Namespace())
	return apperror.ValidationFailed(field, describe(field, fe))
}

// fieldPath drops the struct name from a namespace:
// "JobInput.buyer.email" → "buyer.email".
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func describe(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "url":
		return field + " must be a valid URL"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "gtefield":
		return fmt.Sprintf("%s must not be less than %s", field, jsonName(fe.Param()))
	case "len", "hexadecimal":
		return field + " must be a 24 character hex string"
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}

// jsonName maps the Go field names that appear in cross-field params back to
// their JSON names.
func jsonName(goField string) string {
	switch goField {
	case "MinPrice":
		return "min_price"
	default:
		return goField
	}
}
