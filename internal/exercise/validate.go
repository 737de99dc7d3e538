package exercise

import (
	"fmt"
	"strings"

	apperrors "github.com/courseforge/dragdrop-service/internal/errors"
	"github.com/courseforge/dragdrop-service/internal/models"
)

// Validate checks the authoring rules an exercise must satisfy before it can
// be saved. Every rule is evaluated independently and all failures are
// reported in a stable order; the caller decides how many to surface (the
// authoring UI typically shows only the first). An exercise is savable iff
// the returned list is empty.
func Validate(ex *models.Exercise) apperrors.ValidationErrors {
	var errs apperrors.ValidationErrors

	if len(ex.Zones) == 0 {
		errs = append(errs, *apperrors.NewValidationErrorWithRule(
			"zones", "at least one drop zone is required", "min_zones", len(ex.Zones)))
	}

	if len(ex.Items) == 0 {
		errs = append(errs, *apperrors.NewValidationErrorWithRule(
			"items", "at least one item is required", "min_items", len(ex.Items)))
	}

	for i := range ex.Items {
		item := &ex.Items[i]
		switch {
		case item.CorrectZoneID == "":
			errs = append(errs, *apperrors.NewValidationErrorWithRule(
				fmt.Sprintf("items[%d].correct_zone_id", i),
				fmt.Sprintf("item %q has no correct zone assigned", item.Text),
				"correct_zone_exists", item.CorrectZoneID))
		case !ex.HasZone(item.CorrectZoneID):
			errs = append(errs, *apperrors.NewValidationErrorWithRule(
				fmt.Sprintf("items[%d].correct_zone_id", i),
				fmt.Sprintf("item %q names a correct zone that does not exist", item.Text),
				"correct_zone_exists", item.CorrectZoneID))
		}
	}

	seen := make(map[string]int, len(ex.Zones))
	for i := range ex.Zones {
		title := strings.ToLower(strings.TrimSpace(ex.Zones[i].Title))
		if first, dup := seen[title]; dup {
			errs = append(errs, *apperrors.NewValidationErrorWithRule(
				fmt.Sprintf("zones[%d].title", i),
				fmt.Sprintf("zone title %q is already used by zone %d", ex.Zones[i].Title, first+1),
				"unique_zone_title", ex.Zones[i].Title))
			continue
		}
		seen[title] = i
	}

	return errs
}

// IsSavable reports whether the exercise passes all authoring rules.
func IsSavable(ex *models.Exercise) bool {
	return len(Validate(ex)) == 0
}
