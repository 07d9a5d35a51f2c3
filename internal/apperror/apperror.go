// Package apperror turns validator errors into client-facing field messages.
package apperror

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var tagMessages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email address",
	"hexcolor": "must be a hex color",
	"oneof":    "must be one of: %s",
	"min":      "must be at least %s characters long",
	"max":      "must be at most %s characters long",
}

// NewValidator returns a validator that reports fields by their JSON names
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidationDetails converts validator errors into a list of {field: message}
func ValidationDetails(err error) []map[string]string {
	details := make([]map[string]string, 0)

	var validationErr validator.ValidationErrors
	if !errors.As(err, &validationErr) {
		return details
	}

	for _, e := range validationErr {
		msg := fmt.Sprintf("%s is invalid", e.Field())
		if tmpl, ok := tagMessages[e.Tag()]; ok {
			if strings.Contains(tmpl, "%s") {
				msg = fmt.Sprintf(tmpl, e.Param())
			} else {
				msg = tmpl
			}
		}
		details = append(details, map[string]string{e.Field(): msg})
	}
	return details
}

// Summary joins the details into one sentence for the message field
func Summary(details []map[string]string) string {
	parts := make([]string, 0, len(details))
	for _, d := range details {
		for field, msg := range d {
			parts = append(parts, field+" "+msg)
		}
	}
	return strings.Join(parts, "; ")
}
