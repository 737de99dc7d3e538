package exercise

import (
	"github.com/google/uuid"

	"github.com/courseforge/dragdrop-service/internal/models"
)

// AddZone appends a new zone to the exercise and returns it. An empty id gets
// a generated one.
func AddZone(ex *models.Exercise, zone models.Zone) *models.Zone {
	if zone.ID == "" {
		zone.ID = uuid.NewString()
	}
	ex.Zones = append(ex.Zones, zone)
	return &ex.Zones[len(ex.Zones)-1]
}

// UpdateZone replaces the stored zone with the same id. Returns false when no
// such zone exists.
func UpdateZone(ex *models.Exercise, zone models.Zone) bool {
	for i := range ex.Zones {
		if ex.Zones[i].ID == zone.ID {
			ex.Zones[i] = zone
			return true
		}
	}
	return false
}

// RemoveZone deletes the zone and cascades: any item whose correct answer
// referenced it loses that reference (correct_zone_id cleared, the id dropped
// from alternate lists). Placements are session state and are pruned
// separately via ClearZonePlacements. Returns false when no such zone exists.
func RemoveZone(ex *models.Exercise, zoneID string) bool {
	idx := -1
	for i := range ex.Zones {
		if ex.Zones[i].ID == zoneID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	ex.Zones = append(ex.Zones[:idx], ex.Zones[idx+1:]...)

	for i := range ex.Items {
		item := &ex.Items[i]
		if item.CorrectZoneID == zoneID {
			item.CorrectZoneID = ""
		}
		item.AltCorrectZoneIDs = removeString(item.AltCorrectZoneIDs, zoneID)
	}
	return true
}

// AddItem appends a new item to the exercise and returns it. An empty id gets
// a generated one.
func AddItem(ex *models.Exercise, item models.Item) *models.Item {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	ex.Items = append(ex.Items, item)
	return &ex.Items[len(ex.Items)-1]
}

// UpdateItem replaces the stored item with the same id. Returns false when no
// such item exists.
func UpdateItem(ex *models.Exercise, item models.Item) bool {
	for i := range ex.Items {
		if ex.Items[i].ID == item.ID {
			ex.Items[i] = item
			return true
		}
	}
	return false
}

// RemoveItem deletes the item. Returns false when no such item exists.
func RemoveItem(ex *models.Exercise, itemID string) bool {
	for i := range ex.Items {
		if ex.Items[i].ID == itemID {
			ex.Items = append(ex.Items[:i], ex.Items[i+1:]...)
			return true
		}
	}
	return false
}

// UpdateSettings replaces the exercise settings wholesale. Partial updates
// are assembled by the caller from the current settings.
func UpdateSettings(ex *models.Exercise, settings models.Settings) {
	ex.Settings = settings
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
