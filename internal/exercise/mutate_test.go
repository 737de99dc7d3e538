package exercise

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/courseforge/dragdrop-service/internal/models"
)

func TestAddZone_GeneratesID(t *testing.T) {
	ex := models.NewExercise()

	zone := AddZone(ex, models.Zone{Title: "Fruits"})

	assert.NotEmpty(t, zone.ID)
	assert.Len(t, ex.Zones, 1)
}

func TestAddZone_KeepsProvidedID(t *testing.T) {
	ex := models.NewExercise()

	zone := AddZone(ex, models.Zone{ID: "z-custom", Title: "Fruits"})

	assert.Equal(t, "z-custom", zone.ID)
}

func TestUpdateZone_MissingReturnsFalse(t *testing.T) {
	ex := produceExercise()

	assert.False(t, UpdateZone(ex, models.Zone{ID: "z-gone", Title: "Ghost"}))
	assert.True(t, UpdateZone(ex, models.Zone{ID: "z-fruits", Title: "Tree Fruits"}))
	assert.Equal(t, "Tree Fruits", ex.ZoneByID("z-fruits").Title)
}

func TestRemoveZone_CascadesCorrectZoneReferences(t *testing.T) {
	ex := produceExercise()
	ex.Items[0].AltCorrectZoneIDs = []string{"z-vegetables"}

	assert.True(t, RemoveZone(ex, "z-vegetables"))

	assert.Len(t, ex.Zones, 1)
	// Carrot pointed at the removed zone; its answer key is cleared, not
	// left dangling.
	carrot := ex.ItemByID("i-carrot")
	assert.Equal(t, "", carrot.CorrectZoneID)

	apple := ex.ItemByID("i-apple")
	assert.Equal(t, "z-fruits", apple.CorrectZoneID)
	assert.Empty(t, apple.AltCorrectZoneIDs)
}

func TestRemoveZone_Missing(t *testing.T) {
	ex := produceExercise()

	assert.False(t, RemoveZone(ex, "z-gone"))
	assert.Len(t, ex.Zones, 2)
}

func TestAddItem_GeneratesID(t *testing.T) {
	ex := produceExercise()

	item := AddItem(ex, models.Item{Text: "Banana", CorrectZoneID: "z-fruits"})

	assert.NotEmpty(t, item.ID)
	assert.Len(t, ex.Items, 3)
}

func TestUpdateItem(t *testing.T) {
	ex := produceExercise()

	assert.False(t, UpdateItem(ex, models.Item{ID: "i-gone", Text: "Ghost"}))
	assert.True(t, UpdateItem(ex, models.Item{ID: "i-apple", Text: "Green Apple", CorrectZoneID: "z-fruits"}))
	assert.Equal(t, "Green Apple", ex.ItemByID("i-apple").Text)
}

func TestRemoveItem(t *testing.T) {
	ex := produceExercise()

	assert.True(t, RemoveItem(ex, "i-apple"))
	assert.False(t, RemoveItem(ex, "i-apple"))
	assert.Len(t, ex.Items, 1)
}

func TestUpdateSettings(t *testing.T) {
	ex := produceExercise()
	settings := ex.Settings
	settings.ShuffleItems = true
	settings.ScoringMode = models.ScoringAllOrNothing

	UpdateSettings(ex, settings)

	assert.True(t, ex.Settings.ShuffleItems)
	assert.Equal(t, models.ScoringAllOrNothing, ex.Settings.ScoringMode)
}
