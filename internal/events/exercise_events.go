package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/courseforge/dragdrop-service/internal/models"
)

// EventType represents different types of exercise lifecycle events
type EventType string

const (
	// Document events
	EventExerciseSaved   EventType = "exercise.saved"
	EventExerciseDeleted EventType = "exercise.deleted"

	// EventSaveDegraded fires when a remote save fell back to the local
	// store; downstream consumers use it to notify the author that the
	// change exists only on their machine.
	EventSaveDegraded EventType = "exercise.save_degraded"
)

// ExerciseEvent is the base structure for all published events
type ExerciseEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Event payloads

type ExerciseSavedEvent struct {
	CourseID  string                 `json:"course_id,omitempty"`
	SlideID   string                 `json:"slide_id,omitempty"`
	Location  models.StorageLocation `json:"location"`
	ZoneCount int                    `json:"zone_count"`
	ItemCount int                    `json:"item_count"`
	SavedAt   time.Time              `json:"saved_at"`
}

type SaveDegradedEvent struct {
	CourseID   string    `json:"course_id"`
	SlideID    string    `json:"slide_id"`
	DegradedAt time.Time `json:"degraded_at"`
}

type ExerciseDeletedEvent struct {
	CourseID  string    `json:"course_id,omitempty"`
	SlideID   string    `json:"slide_id,omitempty"`
	DeletedAt time.Time `json:"deleted_at"`
}

// Event factory functions

func NewExerciseSavedEvent(courseID, slideID string, result models.SaveResult, zoneCount, itemCount int) *ExerciseEvent {
	return &ExerciseEvent{
		ID:        generateEventID(),
		Type:      EventExerciseSaved,
		Timestamp: time.Now(),
		Source:    "dragdrop-service",
		Version:   "1.0",
		Data: ExerciseSavedEvent{
			CourseID:  courseID,
			SlideID:   slideID,
			Location:  result.Location,
			ZoneCount: zoneCount,
			ItemCount: itemCount,
			SavedAt:   time.Now(),
		},
	}
}

func NewSaveDegradedEvent(courseID, slideID string) *ExerciseEvent {
	return &ExerciseEvent{
		ID:        generateEventID(),
		Type:      EventSaveDegraded,
		Timestamp: time.Now(),
		Source:    "dragdrop-service",
		Version:   "1.0",
		Data: SaveDegradedEvent{
			CourseID:   courseID,
			SlideID:    slideID,
			DegradedAt: time.Now(),
		},
	}
}

func NewExerciseDeletedEvent(courseID, slideID string) *ExerciseEvent {
	return &ExerciseEvent{
		ID:        generateEventID(),
		Type:      EventExerciseDeleted,
		Timestamp: time.Now(),
		Source:    "dragdrop-service",
		Version:   "1.0",
		Data: ExerciseDeletedEvent{
			CourseID:  courseID,
			SlideID:   slideID,
			DeletedAt: time.Now(),
		},
	}
}

func generateEventID() string {
	return uuid.NewString()
}
