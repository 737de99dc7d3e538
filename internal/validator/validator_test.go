package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/courseforge/dragdrop-service/internal/errors"
	"github.com/courseforge/dragdrop-service/internal/models"
)

func validDocument() *models.Exercise {
	ex := models.NewExercise()
	ex.Zones = append(ex.Zones, models.Zone{ID: "z1", Title: "Fruits"})
	ex.Items = append(ex.Items, models.Item{ID: "i1", Text: "Apple", CorrectZoneID: "z1"})
	return ex
}

func TestValidate_ValidDocument(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(validDocument()))
}

func TestValidate_StructTagFailure(t *testing.T) {
	v := New()
	ex := validDocument()
	ex.Version = 2

	err := v.Validate(ex)

	assert.Error(t, err)
	var verrs apperrors.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
	// Error fields use json names via the registered tag name function.
	assert.Equal(t, "version", verrs[0].Field)
}

func TestValidate_BusinessRuleFailure(t *testing.T) {
	v := New()
	ex := validDocument()
	ex.Items[0].CorrectZoneID = ""

	err := v.Validate(ex)

	assert.Error(t, err)
	var verrs apperrors.ValidationErrors
	if assert.ErrorAs(t, err, &verrs) {
		assert.Equal(t, "correct_zone_exists", verrs[0].Rule)
	}
}

func TestValidateStruct_ScoringMode(t *testing.T) {
	v := New()
	ex := validDocument()
	ex.Settings.ScoringMode = "percentage"

	assert.Error(t, v.ValidateStruct(ex))

	ex.Settings.ScoringMode = models.ScoringAllOrNothing
	assert.NoError(t, v.ValidateStruct(ex))
}

func TestValidateStruct_HexColor(t *testing.T) {
	v := New()
	ex := validDocument()

	ex.Zones[0].Color = "#1a2b3c"
	assert.NoError(t, v.ValidateStruct(ex))

	ex.Zones[0].Color = "#fff"
	assert.NoError(t, v.ValidateStruct(ex))

	ex.Zones[0].Color = "blue"
	assert.Error(t, v.ValidateStruct(ex))
}

func TestValidateExercise_ReturnsOrderedErrors(t *testing.T) {
	v := New()

	errs := v.ValidateExercise(models.NewExercise())

	if assert.Len(t, errs, 2) {
		assert.Equal(t, "min_zones", errs[0].Rule)
		assert.Equal(t, "min_items", errs[1].Rule)
	}
}
