package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "agedist/pkg/domain-errors"
)

var natCode = regexp.MustCompile(`^[A-Za-z]{2}$`)

var defaultValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their flag or json name rather than the Go name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"flag", "json"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	// natlist accepts a comma separated list of two-letter nationality codes.
	_ = v.RegisterValidation("natlist", func(fl validator.FieldLevel) bool {
		for _, part := range strings.Split(fl.Field().String(), ",") {
			if !natCode.MatchString(strings.TrimSpace(part)) {
				return false
			}
		}
		return true
	})
	return v
}

// Validate checks a tagged struct and returns an invalid_input domain error
// describing the first failing field.
func Validate(req any) error {
	if err := defaultValidator.Struct(req); err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, ErrorMessage(err))
	}
	return nil
}

// ErrorMessage converts a validator error into a human-readable message.
func ErrorMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "invalid input"
	}

	fe := validationErrs[0]
	field := fe.Field()

	switch fe.ActualTag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "url":
		return fmt.Sprintf("%s must be a valid url", field)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "natlist":
		return fmt.Sprintf("%s must be comma separated two-letter codes", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
