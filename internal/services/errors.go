package services

import (
	"errors"
	"fmt"

	apperrors "github.com/courseforge/dragdrop-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")

	// Exercise specific errors
	ErrExerciseNotFound   = errors.New("exercise not found")
	ErrExerciseNotSavable = errors.New("exercise has validation errors and cannot be saved")
	ErrZoneNotFound       = errors.New("zone not found")
	ErrItemNotFound       = errors.New("item not found")

	// Session specific errors
	ErrSessionNotFound = errors.New("session not found")
	ErrNotPreviewing   = errors.New("session is not in preview")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrExerciseNotFound) ||
		errors.Is(err, ErrZoneNotFound) ||
		errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrSessionNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) || errors.Is(err, ErrExerciseNotSavable) {
		return true
	}
	var ve apperrors.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *apperrors.ValidationError
	return errors.As(err, &single)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
