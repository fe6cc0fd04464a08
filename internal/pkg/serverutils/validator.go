package serverutils

import (
	"fmt"
	"strings"

	"studysync-be/internal/apperror"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest runs struct-tag validation and folds failures into a single
// ValidationError so the error middleware maps them to 400.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperror.NewValidation("invalid request payload")
	}

	parts := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		parts = append(parts, fmt.Sprintf("%s failed on '%s'", fieldErr.Field(), fieldErr.Tag()))
	}
	return apperror.NewValidation("validation failed: %s", strings.Join(parts, "; "))
}
