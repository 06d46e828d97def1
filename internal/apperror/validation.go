package apperror

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// InvalidInput converts a validator failure into a Validation error naming
// every failed field.
func InvalidInput(err error) *Error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return newError(KindValidation, "Validation failed", err)
	}
	parts := make([]string, 0, len(verrs))
	for _, e := range verrs {
		parts = append(parts, fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag()))
	}
	return newError(KindValidation, strings.Join(parts, "; "), nil)
}
