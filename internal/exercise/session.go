package exercise

import (
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/courseforge/dragdrop-service/internal/models"
)

var (
	ErrNotPreviewing    = errors.New("session is not in preview")
	ErrNotShowingResult = errors.New("session is not showing results")
)

// NewSession builds a fresh playback session for an exercise: all placements
// unassigned, state Editing, and the presentation order shuffled when the
// exercise asks for it. Loading or reloading an exercise always goes through
// here, which is what resets placements between visits.
func NewSession(ex *models.Exercise, courseID, slideID string) *models.Session {
	now := time.Now()
	s := &models.Session{
		ID:         uuid.NewString(),
		CourseID:   courseID,
		SlideID:    slideID,
		Exercise:   ex,
		Placements: make(map[string]string),
		ItemOrder:  presentationOrder(ex),
		State:      models.StateEditing,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return s
}

// presentationOrder returns the item ids in the order the player should lay
// them out. The document order is never touched; shuffle only affects this
// session-local view.
func presentationOrder(ex *models.Exercise) []string {
	order := make([]string, len(ex.Items))
	for i := range ex.Items {
		order[i] = ex.Items[i].ID
	}
	if ex.Settings.ShuffleItems {
		rand.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}
	return order
}

// EnterPreview moves the session from authoring into preview. Entering is
// idempotent; any stale results from a previous preview are dropped.
func EnterPreview(s *models.Session) {
	s.State = models.StatePreviewing
	s.Results = nil
	s.UpdatedAt = time.Now()
}

// CheckAnswers scores the current placements and moves the session into the
// showing-results state. The score is computed fresh on every call; results
// are never cached across check/hide toggles.
func CheckAnswers(s *models.Session) (*models.ScoreResult, error) {
	if s.State == models.StateEditing {
		return nil, ErrNotPreviewing
	}
	s.Results = Score(s.Exercise, s.Placements)
	s.State = models.StateShowingResults
	s.UpdatedAt = time.Now()
	return s.Results, nil
}

// HideResults returns from showing-results to plain preview, discarding the
// displayed score.
func HideResults(s *models.Session) error {
	if s.State != models.StateShowingResults {
		return ErrNotShowingResult
	}
	s.Results = nil
	s.State = models.StatePreviewing
	s.UpdatedAt = time.Now()
	return nil
}

// ExitPreview returns the session to authoring from either preview state.
// Results are cleared; placements survive so the author can keep arranging.
func ExitPreview(s *models.Session) {
	s.Results = nil
	s.State = models.StateEditing
	s.UpdatedAt = time.Now()
}

// ResetPlacements returns every item to the unassigned pool and drops any
// displayed results.
func ResetPlacements(s *models.Session) {
	s.Placements = make(map[string]string)
	s.Results = nil
	s.UpdatedAt = time.Now()
}

// Place applies a single drag outcome to the session. Passing the empty zone
// id returns the item to the unassigned pool.
func Place(s *models.Session, itemID, zoneID string) {
	ApplyPlacement(s.Placements, itemID, zoneID)
	s.UpdatedAt = time.Now()
}
