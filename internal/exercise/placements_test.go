package exercise

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyPlacement_AssignAndMove(t *testing.T) {
	placements := map[string]string{}

	ApplyPlacement(placements, "i-apple", "z-fruits")
	assert.Equal(t, "z-fruits", placements["i-apple"])

	// Moving replaces the old placement; an item is never in two zones.
	ApplyPlacement(placements, "i-apple", "z-vegetables")
	assert.Equal(t, "z-vegetables", placements["i-apple"])
	assert.Len(t, placements, 1)
}

func TestApplyPlacement_UnassignRemovesEntry(t *testing.T) {
	placements := map[string]string{"i-apple": "z-fruits"}

	ApplyPlacement(placements, "i-apple", Unassigned)

	assert.Empty(t, placements)
}

func TestItemsInZone_StableOrder(t *testing.T) {
	ex := produceExercise()
	placements := map[string]string{
		"i-carrot": "z-fruits",
		"i-apple":  "z-fruits",
	}

	inZone := ItemsInZone(ex, placements, "z-fruits")

	// Exercise item order, not drop order.
	if assert.Len(t, inZone, 2) {
		assert.Equal(t, "i-apple", inZone[0].ID)
		assert.Equal(t, "i-carrot", inZone[1].ID)
	}
}

func TestItemsInZone_EmptyZoneIDMatchesNothing(t *testing.T) {
	ex := produceExercise()

	assert.Empty(t, ItemsInZone(ex, map[string]string{}, Unassigned))
}

func TestUnassignedItems_PartitionWithZones(t *testing.T) {
	ex := produceExercise()
	placements := map[string]string{"i-apple": "z-fruits"}

	unassigned := UnassignedItems(ex, placements)

	if assert.Len(t, unassigned, 1) {
		assert.Equal(t, "i-carrot", unassigned[0].ID)
	}

	// Every item is either placed or unassigned, never both or neither.
	placed := 0
	for _, zone := range ex.Zones {
		placed += len(ItemsInZone(ex, placements, zone.ID))
	}
	assert.Equal(t, len(ex.Items), placed+len(unassigned))
}

func TestUnassignedItems_StalePlacementCountsAsUnassigned(t *testing.T) {
	ex := produceExercise()
	placements := map[string]string{"i-apple": "z-deleted"}

	unassigned := UnassignedItems(ex, placements)

	assert.Len(t, unassigned, 2)
}

func TestClearZonePlacements(t *testing.T) {
	placements := map[string]string{
		"i-apple":  "z-fruits",
		"i-carrot": "z-vegetables",
	}

	ClearZonePlacements(placements, "z-fruits")

	assert.NotContains(t, placements, "i-apple")
	assert.Equal(t, "z-vegetables", placements["i-carrot"])
}
