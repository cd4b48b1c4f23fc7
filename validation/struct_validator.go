package validation

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/railskit/errors"
	"github.com/kbukum/railskit/keys"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// tagPriority lists the struct tags consulted for field names, in order.
var tagPriority = []string{"mapstructure", "yaml", "json"}

// getValidator returns the singleton validator instance.
func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report fields under the names used in configuration files.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range tagPriority {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return strings.ToLower(keys.Underscore(fld.Name))
		})
	})
	return validate
}

// Struct validates a struct using `validate` tags such as
// `validate:"required,url,oneof=bearer basic"`.
func Struct(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.InvalidConfig("", "validation failed").WithCause(err)
	}

	v := New()
	for _, e := range validationErrors {
		v.AddError(fieldPath(e), formatValidationError(e))
	}
	return v.Validate()
}

// fieldPath drops the top-level struct name from the namespace, so
// "Definition.client.base_url" becomes "client.base_url".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

// formatValidationError creates a human-readable error message.
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "required_without", "required_with":
		return "is required"
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "url", "http_url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + e.Param()
	case "excluded_with":
		return "must not be set together with " + e.Param()
	default:
		return "is invalid"
	}
}
