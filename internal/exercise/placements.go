// Package exercise implements the drag-and-drop matching engine: placement
// views, scoring, document validation, authoring mutations and the preview
// session lifecycle. Everything here is a pure, synchronous function over an
// exercise document and a placement map; persistence and transport live
// elsewhere.
package exercise

import "github.com/courseforge/dragdrop-service/internal/models"

// Unassigned is the zone id value meaning "not placed anywhere".
const Unassigned = ""

// ItemsInZone returns the items currently placed in the given zone, in
// exercise item order (stable regardless of when each item was dropped).
func ItemsInZone(ex *models.Exercise, placements map[string]string, zoneID string) []models.Item {
	out := make([]models.Item, 0)
	for _, item := range ex.Items {
		if placements[item.ID] == zoneID && zoneID != Unassigned {
			out = append(out, item)
		}
	}
	return out
}

// UnassignedItems returns the items with no placement, plus items whose
// placement references a zone that no longer exists in the exercise.
func UnassignedItems(ex *models.Exercise, placements map[string]string) []models.Item {
	out := make([]models.Item, 0)
	for _, item := range ex.Items {
		zoneID := placements[item.ID]
		if zoneID == Unassigned || !ex.HasZone(zoneID) {
			out = append(out, item)
		}
	}
	return out
}

// ApplyPlacement records the item's current zone, unconditionally replacing
// any prior placement: an item occupies at most one zone at a time, whatever
// allow_multiple_per_zone says (that setting concerns zone capacity, not
// per-item fan-out). The target is not checked against the zone list here; a
// stale target simply renders the item unassigned in the views above.
func ApplyPlacement(placements map[string]string, itemID, zoneID string) {
	if zoneID == Unassigned {
		delete(placements, itemID)
		return
	}
	placements[itemID] = zoneID
}

// ClearZonePlacements unassigns every item currently placed in the given
// zone. Used when the author deletes a zone mid-session.
func ClearZonePlacements(placements map[string]string, zoneID string) {
	for itemID, z := range placements {
		if z == zoneID {
			delete(placements, itemID)
		}
	}
}
