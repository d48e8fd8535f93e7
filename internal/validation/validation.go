package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/jrsteele09/academy-admin/internal/errors"
	"github.com/pkg/errors"
)

// New returns a validator that reports fields by their JSON names.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

var shared = New()

// Struct validates s and returns an error wrapping ErrInvalidInput that lists every
// failed field.
func Struct(s any) error {
	return Check(shared, s)
}

func Check(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Wrap(apperrors.ErrInvalidInput, err.Error())
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, Message(fe))
	}
	return errors.Wrap(apperrors.ErrInvalidInput, strings.Join(msgs, "; "))
}

// Message renders one field failure for display.
func Message(fe validator.FieldError) string {
	field := fieldPath(fe)
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map {
			return fmt.Sprintf("%s needs at least %s entries", field, fe.Param())
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must not be below %s", field, fe.Param())
	case "eqfield":
		return fmt.Sprintf("%s must match %s", field, lowerFirst(fe.Param()))
	case "gtefield":
		return fmt.Sprintf("%s must not be before %s", field, lowerFirst(fe.Param()))
	case "ltefield":
		return fmt.Sprintf("%s must not be after %s", field, lowerFirst(fe.Param()))
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "datauri":
		return fmt.Sprintf("%s must be a data URI", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	default:
		return fmt.Sprintf("%s failed the %s check", field, fe.Tag())
	}
}

// fieldPath drops the top level struct name, "TournamentInput.location.name" -> "location.name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
