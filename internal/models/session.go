package models

import "time"

// SessionState tracks where a playback session is in the preview lifecycle.
type SessionState string

const (
	// StateEditing is the authoring state; no placements are scored.
	StateEditing SessionState = "editing"
	// StatePreviewing is preview with answers not yet checked.
	StatePreviewing SessionState = "previewing"
	// StateShowingResults is preview with the score panel visible. The score
	// is recomputed on every entry into this state, never cached across it.
	StateShowingResults SessionState = "showing_results"
)

// Session is the ephemeral playback state for one exercise: the current
// placement of each item plus the preview state machine position. It is
// recreated whenever the exercise is (re)loaded and is never persisted with
// the exercise document.
type Session struct {
	ID       string    `json:"id"`
	CourseID string    `json:"course_id,omitempty"`
	SlideID  string    `json:"slide_id,omitempty"`
	Exercise *Exercise `json:"exercise"`

	// Placements maps item id to zone id; absent or empty means unassigned.
	Placements map[string]string `json:"placements"`

	// ItemOrder is the presentation order for this session. It differs from
	// the document order only when shuffle_items is set.
	ItemOrder []string `json:"item_order,omitempty"`

	State   SessionState `json:"state"`
	Results *ScoreResult `json:"results,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ScoreResult is the outcome of scoring a set of placements against an
// exercise. Percent is nil when the exercise has no scorable points; callers
// must not display a percentage in that case.
type ScoreResult struct {
	CorrectItemIDs []string `json:"correct_item_ids"`
	TotalPoints    int      `json:"total_points"`
	EarnedPoints   int      `json:"earned_points"`
	Percent        *int     `json:"percent,omitempty"`

	// Feedback carries per-item feedback text when show_instant_feedback is
	// enabled on the exercise; keyed by item id.
	Feedback map[string]string `json:"feedback,omitempty"`
}

// IsCorrect reports whether the given item id was scored correct.
func (r *ScoreResult) IsCorrect(itemID string) bool {
	for _, id := range r.CorrectItemIDs {
		if id == itemID {
			return true
		}
	}
	return false
}
