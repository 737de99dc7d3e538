package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ExerciseRecord is the persisted row for an exercise document. The document
// itself is stored as opaque JSON (the Exercise shape), keyed by course and
// slide; the row carries only addressing and bookkeeping columns so the
// document shape can evolve without schema churn.
type ExerciseRecord struct {
	ID       uint           `json:"id" gorm:"primaryKey"`
	CourseID string         `json:"course_id" gorm:"size:64;index:idx_course_slide,unique"`
	SlideID  string         `json:"slide_id" gorm:"size:64;index:idx_course_slide,unique"`
	Document datatypes.JSON `json:"document" gorm:"not null"`

	// Schema version of the stored document, duplicated out of the JSON so
	// future migrations can select on it.
	SchemaVersion int `json:"schema_version" gorm:"default:1"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (ExerciseRecord) TableName() string {
	return "exercise_documents"
}

// StorageLocation reports where a save or load actually landed.
type StorageLocation string

const (
	StorageRemote StorageLocation = "remote"
	StorageLocal  StorageLocation = "local"
	StorageCache  StorageLocation = "cache"
)

// SaveResult is returned from every save. Degraded means the remote store
// failed and the document exists only in the local fallback; callers surface
// that as a non-fatal notice, never as an error.
type SaveResult struct {
	Location StorageLocation `json:"location"`
	Degraded bool            `json:"degraded"`
}
