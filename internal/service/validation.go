package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrValidation wraps every input validation failure
var ErrValidation = errors.New("validation failed")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their API names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// validateStruct runs the validate tags of req and reports the first failure
// as a readable message wrapping ErrValidation.
func validateStruct(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%w: %s is required", ErrValidation, fe.Field())
	case "email":
		return fmt.Errorf("%w: %s must be a valid email", ErrValidation, fe.Field())
	case "min":
		return fmt.Errorf("%w: %s must be at least %s characters", ErrValidation, fe.Field(), fe.Param())
	case "gt":
		return fmt.Errorf("%w: %s must be greater than %s", ErrValidation, fe.Field(), fe.Param())
	default:
		return fmt.Errorf("%w: %s is invalid", ErrValidation, fe.Field())
	}
}
