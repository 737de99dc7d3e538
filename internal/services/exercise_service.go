package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/courseforge/dragdrop-service/internal/cache"
	apperrors "github.com/courseforge/dragdrop-service/internal/errors"
	"github.com/courseforge/dragdrop-service/internal/events"
	"github.com/courseforge/dragdrop-service/internal/exercise"
	"github.com/courseforge/dragdrop-service/internal/models"
	"github.com/courseforge/dragdrop-service/internal/store"
	"github.com/courseforge/dragdrop-service/internal/validator"
)

const (
	exerciseCacheKeyPrefix = "exercise:"
	exerciseCacheTTL       = 5 * time.Minute
)

type exerciseService struct {
	store     *store.FallbackStore
	lister    ExerciseLister
	cache     cache.CacheService
	events    events.EventPublisher
	validator *validator.Validator
	logger    *slog.Logger
	ops       *ServiceLogger
}

func NewExerciseService(
	st *store.FallbackStore,
	lister ExerciseLister,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	v *validator.Validator,
	logger *slog.Logger,
) ExerciseService {
	return &exerciseService{
		store:     st,
		lister:    lister,
		cache:     cacheService,
		events:    publisher,
		validator: v,
		logger:    logger,
		ops: NewServiceLogger(logger, LogConfig{
			Service:   "dragdrop-service",
			Component: "exercise",
		}),
	}
}

// ===== DOCUMENT OPERATIONS =====

// Get loads the document for the locator. A missing document is not an error
// for the authoring surface: it yields a fresh empty exercise, the same way a
// corrupt one does deeper in the store.
func (s *exerciseService) Get(ctx context.Context, loc store.Locator) (*ExerciseResponse, error) {
	ex, source, err := s.load(ctx, loc)
	if err != nil {
		return nil, err
	}

	issues := s.collectIssues(ex)
	return &ExerciseResponse{
		Exercise: ex,
		Locator:  loc,
		Issues:   issues,
		Savable:  len(issues) == 0,
		Source:   source,
	}, nil
}

// Save validates and persists the full document. Structural validation
// failures block the save; a remote outage does not, it degrades to the local
// store and the response says so.
func (s *exerciseService) Save(ctx context.Context, loc store.Locator, ex *models.Exercise) (*SaveResponse, error) {
	op := s.ops.WithOperation(ctx, "save_exercise")

	if ex == nil {
		op.LogResult(loc.Key(), ErrBadRequest)
		return nil, ErrBadRequest
	}
	if ex.Version == 0 {
		ex.Version = models.SchemaVersion
	}
	if err := s.validator.Validate(ex); err != nil {
		op.LogResult(loc.Key(), err)
		return nil, err
	}

	resp, err := s.persist(ctx, loc, ex)
	op.LogResult(loc.Key(), err)
	return resp, err
}

func (s *exerciseService) Delete(ctx context.Context, loc store.Locator) error {
	op := s.ops.WithOperation(ctx, "delete_exercise")

	if err := s.store.Delete(ctx, loc); err != nil {
		if store.IsNotFoundError(err) {
			op.LogResult(loc.Key(), ErrExerciseNotFound)
			return ErrExerciseNotFound
		}
		err = fmt.Errorf("failed to delete exercise: %w", err)
		op.LogResult(loc.Key(), err)
		return err
	}

	s.invalidateCache(ctx, loc)
	s.publish(ctx, events.NewExerciseDeletedEvent(loc.CourseID, loc.SlideID))

	op.LogResult(loc.Key(), nil)
	return nil
}

func (s *exerciseService) List(ctx context.Context, courseID string) ([]*ExerciseListEntry, error) {
	if courseID == "" {
		return nil, NewValidationError("course_id", "course id is required", courseID)
	}
	if s.lister == nil {
		return nil, ErrBadRequest
	}

	records, err := s.lister.List(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list exercises: %w", err)
	}

	entries := make([]*ExerciseListEntry, 0, len(records))
	for _, record := range records {
		entry := &ExerciseListEntry{
			CourseID:  record.CourseID,
			SlideID:   record.SlideID,
			UpdatedAt: record.UpdatedAt.Unix(),
		}
		if ex, err := store.DecodeDocument(record.Document); err == nil {
			entry.ZoneCount = len(ex.Zones)
			entry.ItemCount = len(ex.Items)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ===== ZONE OPERATIONS =====

func (s *exerciseService) AddZone(ctx context.Context, loc store.Locator, req ZoneRequest) (*SaveResponse, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, apperrors.ToValidationErrors(err)
	}

	ex, _, err := s.load(ctx, loc)
	if err != nil {
		return nil, err
	}

	exercise.AddZone(ex, models.Zone{
		Title:       req.Title,
		Description: req.Description,
		Categories:  req.Categories,
		Color:       req.Color,
	})
	return s.persist(ctx, loc, ex)
}

func (s *exerciseService) UpdateZone(ctx context.Context, loc store.Locator, zoneID string, req ZoneRequest) (*SaveResponse, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, apperrors.ToValidationErrors(err)
	}

	ex, _, err := s.load(ctx, loc)
	if err != nil {
		return nil, err
	}

	updated := exercise.UpdateZone(ex, models.Zone{
		ID:          zoneID,
		Title:       req.Title,
		Description: req.Description,
		Categories:  req.Categories,
		Color:       req.Color,
	})
	if !updated {
		return nil, ErrZoneNotFound
	}
	return s.persist(ctx, loc, ex)
}

func (s *exerciseService) RemoveZone(ctx context.Context, loc store.Locator, zoneID string) (*SaveResponse, error) {
	ex, _, err := s.load(ctx, loc)
	if err != nil {
		return nil, err
	}

	if !exercise.RemoveZone(ex, zoneID) {
		return nil, ErrZoneNotFound
	}
	return s.persist(ctx, loc, ex)
}

// ===== ITEM OPERATIONS =====

func (s *exerciseService) AddItem(ctx context.Context, loc store.Locator, req ItemRequest) (*SaveResponse, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, apperrors.ToValidationErrors(err)
	}

	ex, _, err := s.load(ctx, loc)
	if err != nil {
		return nil, err
	}

	if err := s.checkZoneRefs(ex, req); err != nil {
		return nil, err
	}

	exercise.AddItem(ex, itemFromRequest("", req))
	return s.persist(ctx, loc, ex)
}

func (s *exerciseService) UpdateItem(ctx context.Context, loc store.Locator, itemID string, req ItemRequest) (*SaveResponse, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, apperrors.ToValidationErrors(err)
	}

	ex, _, err := s.load(ctx, loc)
	if err != nil {
		return nil, err
	}

	if err := s.checkZoneRefs(ex, req); err != nil {
		return nil, err
	}

	if !exercise.UpdateItem(ex, itemFromRequest(itemID, req)) {
		return nil, ErrItemNotFound
	}
	return s.persist(ctx, loc, ex)
}

func (s *exerciseService) RemoveItem(ctx context.Context, loc store.Locator, itemID string) (*SaveResponse, error) {
	ex, _, err := s.load(ctx, loc)
	if err != nil {
		return nil, err
	}

	if !exercise.RemoveItem(ex, itemID) {
		return nil, ErrItemNotFound
	}
	return s.persist(ctx, loc, ex)
}

// ===== SETTINGS AND INSTRUCTIONS =====

func (s *exerciseService) UpdateSettings(ctx context.Context, loc store.Locator, req SettingsRequest) (*SaveResponse, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, apperrors.ToValidationErrors(err)
	}

	ex, _, err := s.load(ctx, loc)
	if err != nil {
		return nil, err
	}

	settings := ex.Settings
	if req.ShuffleItems != nil {
		settings.ShuffleItems = *req.ShuffleItems
	}
	if req.AllowMultiplePerZone != nil {
		settings.AllowMultiplePerZone = *req.AllowMultiplePerZone
	}
	if req.SnapToZone != nil {
		settings.SnapToZone = *req.SnapToZone
	}
	if req.ScoringMode != nil {
		settings.ScoringMode = *req.ScoringMode
	}
	if req.ShowInstantFeedback != nil {
		settings.ShowInstantFeedback = *req.ShowInstantFeedback
	}
	if req.Colors != nil {
		settings.Colors = req.Colors
	}

	exercise.UpdateSettings(ex, settings)
	return s.persist(ctx, loc, ex)
}

func (s *exerciseService) UpdateInstructions(ctx context.Context, loc store.Locator, instructions *string) (*SaveResponse, error) {
	ex, _, err := s.load(ctx, loc)
	if err != nil {
		return nil, err
	}

	ex.Instructions = instructions
	return s.persist(ctx, loc, ex)
}

// ===== VALIDATION =====

func (s *exerciseService) Validate(_ context.Context, ex *models.Exercise) *ValidationResponse {
	issues := s.collectIssues(ex)
	return &ValidationResponse{
		Valid:  len(issues) == 0,
		Issues: issues,
	}
}

// ===== INTERNAL HELPERS =====

func (s *exerciseService) load(ctx context.Context, loc store.Locator) (*models.Exercise, models.StorageLocation, error) {
	cacheKey := exerciseCacheKeyPrefix + loc.Key()

	var cached models.Exercise
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, models.StorageCache, nil
	}

	ex, source, err := s.store.LoadWithSource(ctx, loc)
	if err != nil {
		if store.IsNotFoundError(err) {
			// A fresh document was never loaded from anywhere.
			return models.NewExercise(), "", nil
		}
		return nil, "", fmt.Errorf("failed to load exercise: %w", err)
	}

	if err := s.cache.Set(ctx, cacheKey, ex, exerciseCacheTTL); err != nil {
		s.logger.Debug("exercise cache set failed", "key", loc.Key(), "error", err)
	}
	return ex, source, nil
}

// persist writes the document, refreshes the cache and publishes the save
// event (plus the degraded event when the remote store was unreachable).
func (s *exerciseService) persist(ctx context.Context, loc store.Locator, ex *models.Exercise) (*SaveResponse, error) {
	result, err := s.store.Save(ctx, ex, loc)
	if err != nil {
		return nil, fmt.Errorf("failed to save exercise: %w", err)
	}

	cacheKey := exerciseCacheKeyPrefix + loc.Key()
	if err := s.cache.Set(ctx, cacheKey, ex, exerciseCacheTTL); err != nil {
		s.logger.Debug("exercise cache set failed", "key", loc.Key(), "error", err)
	}

	s.publish(ctx, events.NewExerciseSavedEvent(loc.CourseID, loc.SlideID, result, len(ex.Zones), len(ex.Items)))
	if result.Degraded {
		s.publish(ctx, events.NewSaveDegradedEvent(loc.CourseID, loc.SlideID))
		s.logger.Warn("exercise saved in degraded mode", "key", loc.Key())
	}

	return &SaveResponse{
		Exercise: ex,
		Location: result.Location,
		Degraded: result.Degraded,
	}, nil
}

func (s *exerciseService) invalidateCache(ctx context.Context, loc store.Locator) {
	if err := s.cache.Delete(ctx, exerciseCacheKeyPrefix+loc.Key()); err != nil {
		s.logger.Debug("exercise cache delete failed", "key", loc.Key(), "error", err)
	}
}

func (s *exerciseService) publish(ctx context.Context, event *events.ExerciseEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishExerciseEvent(ctx, event); err != nil {
		s.logger.Warn("failed to publish exercise event", "event_type", event.Type, "error", err)
	}
}

func (s *exerciseService) collectIssues(ex *models.Exercise) []ValidationIssue {
	if ex == nil {
		return []ValidationIssue{{Field: "exercise", Rule: "required", Message: "exercise document is required"}}
	}

	verrs := exercise.Validate(ex)
	if len(verrs) == 0 {
		return nil
	}

	issues := make([]ValidationIssue, 0, len(verrs))
	for _, verr := range verrs {
		issues = append(issues, ValidationIssue{
			Field:   verr.Field,
			Rule:    verr.Rule,
			Message: verr.Message,
		})
	}
	return issues
}

// checkZoneRefs rejects item requests naming zones the exercise does not
// have. The document-level validator would catch this too, but failing the
// request keeps a bad reference out of the saved document entirely.
func (s *exerciseService) checkZoneRefs(ex *models.Exercise, req ItemRequest) error {
	var verrs apperrors.ValidationErrors
	if req.CorrectZoneID != "" && !ex.HasZone(req.CorrectZoneID) {
		verrs = append(verrs, *apperrors.NewValidationErrorWithRule(
			"correct_zone_id", "names a correct zone that does not exist", "correct_zone_exists", req.CorrectZoneID))
	}
	for _, altID := range req.AltCorrectZoneIDs {
		if !ex.HasZone(altID) {
			verrs = append(verrs, *apperrors.NewValidationErrorWithRule(
				"alt_correct_zone_ids", "names a correct zone that does not exist", "correct_zone_exists", altID))
		}
	}
	if len(verrs) > 0 {
		return verrs
	}
	return nil
}

func itemFromRequest(id string, req ItemRequest) models.Item {
	return models.Item{
		ID:                id,
		Text:              req.Text,
		Color:             req.Color,
		CorrectZoneID:     req.CorrectZoneID,
		AltCorrectZoneIDs: req.AltCorrectZoneIDs,
		Points:            req.Points,
		CorrectFeedback:   req.CorrectFeedback,
		IncorrectFeedback: req.IncorrectFeedback,
	}
}
