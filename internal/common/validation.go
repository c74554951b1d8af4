package common

import (
	"errors"
	"strings"

	validator "github.com/go-playground/validator/v10"
)

// NewValidator returns a validator configured the way request payloads are checked.
func NewValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// ValidateStruct runs v against payload and converts failures into a 400 AppError
// whose details map field names to the failed rule.
func ValidateStruct(v *validator.Validate, payload any) error {
	if v == nil {
		return nil
	}
	err := v.Struct(payload)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[lowerFirst(fe.Field())] = fe.Tag()
	}
	appErr := BadRequest("validation failed", details)
	appErr.Err = err
	return appErr
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
