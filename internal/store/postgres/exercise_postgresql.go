package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/courseforge/dragdrop-service/internal/models"
	"github.com/courseforge/dragdrop-service/internal/store"
)

// ExercisePostgreSQL stores exercise documents in the course platform
// database, one JSON document per (course, slide).
type ExercisePostgreSQL struct {
	db *gorm.DB
}

func NewExercisePostgreSQL(db *gorm.DB) *ExercisePostgreSQL {
	return &ExercisePostgreSQL{db: db}
}

// Migrate creates the exercise_documents table.
func (s *ExercisePostgreSQL) Migrate() error {
	return s.db.AutoMigrate(&models.ExerciseRecord{})
}

func (s *ExercisePostgreSQL) Load(ctx context.Context, loc store.Locator) (*models.Exercise, error) {
	var record models.ExerciseRecord
	err := s.db.WithContext(ctx).
		Where("course_id = ? AND slide_id = ?", loc.CourseID, loc.SlideID).
		First(&record).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load exercise document: %w", err)
	}

	return store.DecodeDocument(record.Document)
}

// Save upserts the document for the locator. Last writer wins; there is no
// version check or merge on concurrent saves.
func (s *ExercisePostgreSQL) Save(ctx context.Context, ex *models.Exercise, loc store.Locator) error {
	data, err := store.EncodeDocument(ex)
	if err != nil {
		return err
	}

	record := models.ExerciseRecord{
		CourseID:      loc.CourseID,
		SlideID:       loc.SlideID,
		Document:      datatypes.JSON(data),
		SchemaVersion: ex.Version,
	}

	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "course_id"}, {Name: "slide_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"document", "schema_version", "updated_at"}),
		}).
		Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to save exercise document: %w", err)
	}

	return nil
}

func (s *ExercisePostgreSQL) Delete(ctx context.Context, loc store.Locator) error {
	result := s.db.WithContext(ctx).
		Where("course_id = ? AND slide_id = ?", loc.CourseID, loc.SlideID).
		Delete(&models.ExerciseRecord{})

	if result.Error != nil {
		return fmt.Errorf("failed to delete exercise document: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// List returns all exercise records for a course, most recently updated
// first.
func (s *ExercisePostgreSQL) List(ctx context.Context, courseID string) ([]*models.ExerciseRecord, error) {
	var records []*models.ExerciseRecord
	err := s.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("updated_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list exercise documents: %w", err)
	}
	return records, nil
}
