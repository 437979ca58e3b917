package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate runs the struct tag rules of v and, when v implements Checker,
// its cross-field checks. Failures are reported as *ValidationError.
func Validate(v any) error {
	verr := &ValidationError{}
	if err := validate.Struct(v); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validate: %w", err)
		}
		for _, fe := range fieldErrs {
			path := fieldPath(fe.Namespace())
			verr.Add(path, fieldMessage(path, fe))
		}
	}
	if c, ok := v.(Checker); ok {
		if cerr := c.Check(); cerr != nil {
			for field, msg := range cerr.Fields {
				verr.Add(field, msg)
			}
		}
	}
	if len(verr.Fields) == 0 {
		return nil
	}
	return verr
}

// ValidateInput is Validate plus a presence check against the raw input.
// Numeric fields where zero is legal (prices) carry decode:"required" instead
// of the validator's required rule, which would reject zero.
func ValidateInput(fields map[string]any, v any) error {
	err := Validate(v)
	missing := missingFields(fields, reflect.TypeOf(v))
	if len(missing) == 0 {
		return err
	}
	verr := &ValidationError{}
	if err != nil && !errors.As(err, &verr) {
		return err
	}
	for _, name := range missing {
		verr.Add(name, name+" is required")
	}
	return verr
}

func missingFields(fields map[string]any, t reflect.Type) []string {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	var missing []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Tag.Get("decode") != "required" {
			continue
		}
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		raw, ok := fields[name]
		if !ok || raw == nil {
			missing = append(missing, name)
			continue
		}
		if _, keep := coerceValue(raw, f.Type); !keep {
			missing = append(missing, name)
		}
	}
	return missing
}

// fieldPath drops the root type and embedded struct names from a validator namespace.
func fieldPath(ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	out := parts[:0]
	for _, p := range parts {
		if p == "Base" {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, ".")
}

func fieldMessage(path string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return path + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", path, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gte", "min":
		return fmt.Sprintf("%s must be at least %s", path, fe.Param())
	case "lte", "max":
		return fmt.Sprintf("%s must be at most %s", path, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", path, fe.Param())
	case "email":
		return path + " must be a valid email address"
	default:
		return fmt.Sprintf("%s failed the %s rule", path, fe.Tag())
	}
}
