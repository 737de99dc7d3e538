// Package store persists exercise documents. The course platform database
// and the local fallback file are two interchangeable strategies
// behind one DocumentStore contract; FallbackStore composes them so remote
// failures degrade to the local copy instead of surfacing as faults.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/courseforge/dragdrop-service/internal/models"
)

var (
	// ErrNotFound means no document exists for the locator.
	ErrNotFound = errors.New("exercise document not found")
	// ErrCorruptDocument means stored bytes could not be decoded as an
	// exercise. FallbackStore recovers from this by resetting to an empty
	// exercise rather than failing the load.
	ErrCorruptDocument = errors.New("stored exercise document is not valid")
)

// Locator addresses one exercise document: the slide of a course it is
// embedded in. The zero value is the sandbox, authoring without a course
// context, persisted only under the fixed local key.
type Locator struct {
	CourseID string `json:"course_id"`
	SlideID  string `json:"slide_id"`
}

// IsSandbox reports whether the locator addresses the local-only sandbox
// document.
func (l Locator) IsSandbox() bool {
	return l.CourseID == "" || l.SlideID == ""
}

// Key returns the storage key for the locator. Sandbox documents share one
// fixed key.
func (l Locator) Key() string {
	if l.IsSandbox() {
		return "dragdrop.sandbox"
	}
	return l.CourseID + "/" + l.SlideID
}

// DocumentStore is the persistence strategy contract. Save overwrites
// whatever is stored; last writer wins, there is no merge or lock.
type DocumentStore interface {
	Load(ctx context.Context, loc Locator) (*models.Exercise, error)
	Save(ctx context.Context, ex *models.Exercise, loc Locator) error
	Delete(ctx context.Context, loc Locator) error
}

// IsNotFoundError reports whether err means the document does not exist.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// EncodeDocument serializes an exercise to its persisted JSON form.
func EncodeDocument(ex *models.Exercise) ([]byte, error) {
	data, err := json.Marshal(ex)
	if err != nil {
		return nil, fmt.Errorf("failed to encode exercise document: %w", err)
	}
	return data, nil
}

// DecodeDocument parses persisted JSON back into an exercise. The version
// switch is the migration extension point: only schema version 1 exists
// today, and anything else is rejected as corrupt rather than guessed at.
func DecodeDocument(data []byte) (*models.Exercise, error) {
	var ex models.Exercise
	if err := json.Unmarshal(data, &ex); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}

	switch ex.Version {
	case models.SchemaVersion:
		// current version, nothing to migrate
	default:
		return nil, fmt.Errorf("%w: unsupported schema version %d", ErrCorruptDocument, ex.Version)
	}

	if ex.Zones == nil {
		ex.Zones = []models.Zone{}
	}
	if ex.Items == nil {
		ex.Items = []models.Item{}
	}
	// A document without a settings object never went through the settings
	// decoder, so the defaults have not been applied.
	if ex.Settings.ScoringMode == "" {
		colors := ex.Settings.Colors
		ex.Settings = models.DefaultSettings()
		ex.Settings.Colors = colors
	}
	return &ex, nil
}
