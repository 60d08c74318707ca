package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their koanf keys, so a failure names the
// same path an operator sets in YAML or through APP_ variables.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("koanf"), ",")
		return name
	})

	// Registration only fails for an empty tag or a nil func.
	_ = v.RegisterValidation("dsn_scheme", func(fl validator.FieldLevel) bool {
		return StoreConfig{DSN: fl.Field().String()}.Backend() != ""
	})

	return v
}

// Validate reports every invalid setting at once. The service refuses to
// start on error.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	problems := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, errors.New(describe(fe)))
	}

	return fmt.Errorf("config validation failed:\n%w", errors.Join(problems...))
}

// keyPath turns "Config.store.max_conns" into "store.max_conns".
func keyPath(namespace string) string {
	_, path, ok := strings.Cut(namespace, ".")
	if !ok {
		return namespace
	}

	return path
}

func describe(fe validator.FieldError) string {
	key := keyPath(fe.Namespace())

	switch fe.Tag() {
	case "required":
		return key + " is required"
	case "required_if":
		field, value, _ := strings.Cut(fe.Param(), " ")
		return fmt.Sprintf("%s is required when %s is %s", key, strings.ToLower(field), value)
	case "min":
		return fmt.Sprintf("%s must be at least %s", key, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", key, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", key, fe.Param())
	case "url":
		return key + " must be a valid URL"
	case "gtefield":
		return fmt.Sprintf("%s must not be before %s", key, strings.ToLower(fe.Param()))
	case "dsn_scheme":
		return key + " must start with postgres://, postgresql://, mongodb:// or mongodb+srv://"
	default:
		return fmt.Sprintf("%s failed validation: %s", key, fe.Tag())
	}
}
