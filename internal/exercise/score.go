package exercise

import (
	"math"

	"github.com/courseforge/dragdrop-service/internal/models"
)

// Score grades the current placements against the exercise's answer key. An
// item counts as correct when it sits in its correct zone or in one of its
// alternate correct zones. Every item contributes its point value (default 1)
// to the total; correct items additionally contribute to the earned sum.
//
// The same structure is computed for every scoring mode, including "none";
// callers decide whether and how to display it. Percent is left nil when the
// exercise has no scorable points, so a zero-item document can never produce
// a NaN percentage downstream.
func Score(ex *models.Exercise, placements map[string]string) *models.ScoreResult {
	result := &models.ScoreResult{
		CorrectItemIDs: make([]string, 0, len(ex.Items)),
	}

	for i := range ex.Items {
		item := &ex.Items[i]
		points := item.PointValue()
		result.TotalPoints += points

		if isCorrectlyPlaced(item, placements[item.ID]) {
			result.EarnedPoints += points
			result.CorrectItemIDs = append(result.CorrectItemIDs, item.ID)
		}
	}

	if result.TotalPoints > 0 {
		pct := int(math.Round(float64(result.EarnedPoints) / float64(result.TotalPoints) * 100))
		result.Percent = &pct
	}

	if ex.Settings.ShowInstantFeedback {
		result.Feedback = collectFeedback(ex, result)
	}

	return result
}

func isCorrectlyPlaced(item *models.Item, zoneID string) bool {
	if zoneID == Unassigned {
		return false
	}
	if zoneID == item.CorrectZoneID {
		return true
	}
	for _, alt := range item.AltCorrectZoneIDs {
		if zoneID == alt {
			return true
		}
	}
	return false
}

// collectFeedback picks each item's correct or incorrect feedback text based
// on the scored outcome. Items without authored feedback are omitted.
func collectFeedback(ex *models.Exercise, result *models.ScoreResult) map[string]string {
	feedback := make(map[string]string)
	for i := range ex.Items {
		item := &ex.Items[i]
		var text *string
		if result.IsCorrect(item.ID) {
			text = item.CorrectFeedback
		} else {
			text = item.IncorrectFeedback
		}
		if text != nil && *text != "" {
			feedback[item.ID] = *text
		}
	}
	if len(feedback) == 0 {
		return nil
	}
	return feedback
}
