package validator

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/courseforge/dragdrop-service/internal/exercise"
	"github.com/courseforge/dragdrop-service/internal/models"
)

// Validator combines struct-tag validation with the exercise authoring rules.
type Validator struct {
	structValidator *validator.Validate
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	// Register all custom validators once
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator: structValidator,
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// ValidateExercise runs the authoring business rules: at least one zone, at
// least one item, correct zones resolvable, zone titles unique. The full
// ordered list is always computed; callers choose how much to surface.
func (v *Validator) ValidateExercise(ex *models.Exercise) ValidationErrors {
	return exercise.Validate(ex)
}

// Validate performs complete validation of an exercise document (struct tags
// + authoring rules).
func (v *Validator) Validate(ex *models.Exercise) error {
	if err := v.ValidateStruct(ex); err != nil {
		return ToValidationErrors(err)
	}

	if errors := v.ValidateExercise(ex); len(errors) > 0 {
		return errors
	}

	return nil
}

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	// Scoring mode validation
	validate.RegisterValidation("scoring_mode", validateScoringMode)

	// Color override validation
	validate.RegisterValidation("hex_color", validateHexColor)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Custom validation functions
func validateScoringMode(fl validator.FieldLevel) bool {
	validModes := []models.ScoringMode{
		models.ScoringAllOrNothing,
		models.ScoringPerItem,
		models.ScoringNone,
	}

	value := fl.Field().String()
	for _, validMode := range validModes {
		if string(validMode) == value {
			return true
		}
	}
	return false
}

func validateHexColor(fl validator.FieldLevel) bool {
	return hexColorPattern.MatchString(fl.Field().String())
}
