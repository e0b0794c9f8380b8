package validation

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/wellmind/authcore/errors"
)

// tagMessages maps validator tags to the human-readable messages used in
// request validation responses.
var tagMessages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email address",
	"oneof":    "must be one of: ",
	"min":      "must be at least ",
	"max":      "must be at most ",
}

var structValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Error messages name fields by their wire (json) name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return toSnakeCase(fld.Name)
		}
		return name
	})
	return v
})

// Validate runs struct-tag validation (`validate:"required,email"` etc.)
// on a bound request body and converts any failures into a single
// INVALID_INPUT error listing every failing field.
func Validate(s any) error {
	err := structValidator().Struct(s)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Validation("validation failed")
	}

	fields := make([]FieldError, 0, len(fieldErrs))
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fieldErr := FieldError{
			Field:   toSnakeCase(fe.Field()),
			Message: tagMessage(fe),
		}
		fields = append(fields, fieldErr)
		messages = append(messages, fieldErr.Field+": "+fieldErr.Message)
	}

	appErr := errors.Validation(strings.Join(messages, "; "))
	appErr.Details = map[string]any{"fields": fields}
	return appErr
}

func tagMessage(fe validator.FieldError) string {
	msg, ok := tagMessages[fe.Tag()]
	if !ok {
		return "is invalid"
	}
	switch fe.Tag() {
	case "oneof":
		return msg + fe.Param()
	case "min", "max":
		return msg + fe.Param() + " characters"
	default:
		return msg
	}
}

// toSnakeCase converts a Go field name to its snake_case wire form.
func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
