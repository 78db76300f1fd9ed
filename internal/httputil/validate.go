package httputil

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their wire names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// CheckRequest runs the `validate` struct tags of a request and returns
// field messages, or nil when the request is well-formed.
func CheckRequest(req any) map[string]string {
	err := structValidator.Struct(req)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return map[string]string{"_": err.Error()}
	}

	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		if _, exists := fields[fe.Field()]; exists {
			continue
		}
		switch fe.Tag() {
		case "required":
			fields[fe.Field()] = "This field is required."
		case "eqfield":
			fields[fe.Field()] = "The two password fields didn't match."
		case "max":
			fields[fe.Field()] = fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
		default:
			fields[fe.Field()] = fmt.Sprintf("Validation failed on %s", fe.Tag())
		}
	}
	return fields
}
