package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/jsamuelsen/daily-quote/internal/domain"
)

var (
	// ErrValidation wraps every tag or Validatable failure.
	ErrValidation = errors.New("validation failed")

	// ErrBinding wraps body and path binding failures.
	ErrBinding = errors.New("binding failed")
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator. Field errors are reported under
// their json names and the calendardate tag accepts what domain.ParseDate
// accepts.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonName)
		_ = validate.RegisterValidation("calendardate", validateCalendarDate)
	})

	return validate
}

func jsonName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}

	return name
}

// Validatable is implemented by requests with rules beyond struct tags.
type Validatable interface {
	Validate() error
}

// Validate checks v's struct tags.
func Validate(v any) error {
	if err := Validator().Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return nil
}

// ValidateAll checks struct tags, then Validate() when v is Validatable.
func ValidateAll(v any) error {
	if err := Validate(v); err != nil {
		return err
	}

	if rules, ok := v.(Validatable); ok {
		if err := rules.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrValidation, err)
		}
	}

	return nil
}

// BindAndValidate decodes the JSON body into v and runs ValidateAll.
func BindAndValidate(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}

	return ValidateAll(v)
}

// BindURIAndValidate binds path parameters into v and checks its tags.
func BindURIAndValidate(c *gin.Context, v any) error {
	if err := c.ShouldBindUri(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}

	return Validate(v)
}

// IsValidationError reports whether err carries struct tag failures.
func IsValidationError(err error) bool {
	var fieldErrs validator.ValidationErrors
	return errors.As(err, &fieldErrs)
}

// ValidationErrors maps each failing field to a readable message. Errors
// without tag failures give an empty map.
func ValidationErrors(err error) map[string]string {
	out := make(map[string]string)

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return out
	}

	for _, fe := range fieldErrs {
		out[fe.Field()] = validationMessage(fe)
	}

	return out
}

var validationMessages = map[string]string{
	"required":     "this field is required",
	"calendardate": "must be a calendar date such as 2023-03-21",
	"oneof":        "must be one of: %s",
	"gte":          "must be greater than or equal to %s",
	"lte":          "must be less than or equal to %s",
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		return "must be at least " + fe.Param() + lengthUnit(fe.Kind())
	case "max":
		return "must be at most " + fe.Param() + lengthUnit(fe.Kind())
	}

	msg, ok := validationMessages[fe.Tag()]
	if !ok {
		return "failed validation: " + fe.Tag()
	}

	if strings.Contains(msg, "%s") {
		return fmt.Sprintf(msg, fe.Param())
	}

	return msg
}

func lengthUnit(kind reflect.Kind) string {
	if kind == reflect.String {
		return " characters"
	}

	return ""
}

// validateCalendarDate leaves empty values to the required tag.
func validateCalendarDate(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}

	_, err := domain.ParseDate(value)

	return err == nil
}
