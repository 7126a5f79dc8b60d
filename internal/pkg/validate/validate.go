package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// v is the package-level singleton validator. Tag name registration happens
// in init, before the first call to Struct.
var v = validator.New(validator.WithRequiredStructEnabled())

func init() {
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
}

// Error lists the failed rule per field, keyed by the field's JSON name.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for field, tag := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", field, tag))
	}
	return strings.Join(msgs, "; ")
}

// Details converts the field failures into a map usable as error details.
func (e *Error) Details() map[string]any {
	details := make(map[string]any, len(e.Fields))
	for field, tag := range e.Fields {
		details[field] = tag
	}
	return details
}

// Struct validates the given struct using its validate tags.
// Rule failures are returned as *Error.
func Struct(s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = fe.Tag()
	}
	return &Error{Fields: fields}
}
