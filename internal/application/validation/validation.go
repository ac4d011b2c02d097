package validation

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// New builds the validator shared by the resource services. Struct fields
// report under their json names so the resulting field map matches what
// the caller sent.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// FieldErrors flattens a validator error into a field → message map.
// Non-validator errors come back under a catch-all key so the caller
// still sees something renderable.
func FieldErrors(err error) map[string]string {
	fields := make(map[string]string)
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		fields["payload"] = "is invalid"
		return fields
	}
	for _, fe := range verrs {
		fields[fe.Field()] = messageFor(fe)
	}
	return fields
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "url":
		return "must be a valid URL"
	default:
		return "is invalid"
	}
}

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// ParseDate accepts the two date shapes callers send: a plain calendar
// date or a full RFC 3339 timestamp.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// RequiredDate parses a date field, recording a message under the field's
// name on failure. A field already rejected as missing is left alone.
func RequiredDate(value, field string, fields map[string]string) (time.Time, bool) {
	if _, taken := fields[field]; taken {
		return time.Time{}, false
	}
	t, ok := ParseDate(value)
	if !ok {
		fields[field] = "must be a valid date"
		return time.Time{}, false
	}
	return t, true
}
