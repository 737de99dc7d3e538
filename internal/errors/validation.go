package errors

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

func (pe *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", pe.Field, pe.Message)
}

// First returns the leading error, matching how the authoring surface shows
// only the first problem while the full list stays available to callers.
func (ve ValidationErrors) First() *ValidationError {
	if len(ve) == 0 {
		return nil
	}
	return &ve[0]
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// NewValidationErrorWithRule creates a new validation error with rule
func NewValidationErrorWithRule(field, message, rule string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
		Rule:    rule,
	}
}

// ToValidationErrors converts validator.ValidationErrors to our custom type
func ToValidationErrors(err error) ValidationErrors {
	var errors ValidationErrors

	if validatorErr, ok := err.(validator.ValidationErrors); ok {
		for _, err := range validatorErr {
			errors = append(errors, ValidationError{
				Field:   err.Field(),
				Message: getErrorMessage(err),
				Value:   err.Value(),
				Rule:    err.Tag(),
			})
		}
	}

	return errors
}

// getErrorMessage returns user-friendly error messages
func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "eq":
		return fmt.Sprintf("must equal %s", err.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())

	// Custom validators
	case "scoring_mode":
		return "must be a valid scoring mode (all_or_nothing, per_item, none)"
	case "hex_color":
		return "must be a hex color like #1a2b3c"

	// Business rule validators
	case "min_zones":
		return "at least one drop zone is required"
	case "min_items":
		return "at least one item is required"
	case "correct_zone_exists":
		return "must reference an existing zone"
	case "unique_zone_title":
		return "zone titles must be unique"

	default:
		return fmt.Sprintf("validation failed for rule '%s'", err.Tag())
	}
}
