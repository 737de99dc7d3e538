package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/courseforge/dragdrop-service/internal/cache"
	"github.com/courseforge/dragdrop-service/internal/exercise"
	"github.com/courseforge/dragdrop-service/internal/models"
	"github.com/courseforge/dragdrop-service/internal/store"
)

const sessionCacheKeyPrefix = "session:"

// DefaultSessionTTL bounds how long an idle playback session survives.
const DefaultSessionTTL = 12 * time.Hour

type sessionService struct {
	store  *store.FallbackStore
	cache  cache.CacheService
	logger *slog.Logger
	ops    *ServiceLogger
	ttl    time.Duration
}

func NewSessionService(st *store.FallbackStore, cacheService cache.CacheService, logger *slog.Logger, ttl time.Duration) SessionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &sessionService{
		store:  st,
		cache:  cacheService,
		logger: logger,
		ops: NewServiceLogger(logger, LogConfig{
			Service:   "dragdrop-service",
			Component: "session",
		}),
		ttl: ttl,
	}
}

// Start loads the exercise for the locator and opens a fresh session on it:
// every item unassigned, state editing, presentation order shuffled when the
// exercise asks for it. Reopening an exercise always starts over; placements
// never survive a reload.
func (s *sessionService) Start(ctx context.Context, loc store.Locator) (*models.Session, error) {
	ex, err := s.store.Load(ctx, loc)
	if err != nil {
		if store.IsNotFoundError(err) {
			ex = models.NewExercise()
		} else {
			return nil, fmt.Errorf("failed to load exercise for session: %w", err)
		}
	}

	session := exercise.NewSession(ex, loc.CourseID, loc.SlideID)
	if err := s.put(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("session started",
		"session_id", session.ID,
		"key", loc.Key(),
		"item_count", len(ex.Items))
	return session, nil
}

func (s *sessionService) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	return s.fetch(ctx, sessionID)
}

func (s *sessionService) End(ctx context.Context, sessionID string) error {
	if err := s.cache.Delete(ctx, sessionCacheKeyPrefix+sessionID); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	return nil
}

// ===== PLACEMENT OPERATIONS =====

func (s *sessionService) PlaceItem(ctx context.Context, sessionID, itemID, zoneID string) (*models.Session, error) {
	session, err := s.fetch(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Exercise.ItemByID(itemID) == nil {
		return nil, ErrItemNotFound
	}
	if zoneID != exercise.Unassigned && !session.Exercise.HasZone(zoneID) {
		return nil, ErrZoneNotFound
	}

	// Single-occupancy zones evict the current tenant back to the pool.
	if zoneID != exercise.Unassigned && !session.Exercise.Settings.AllowMultiplePerZone {
		for _, occupant := range exercise.ItemsInZone(session.Exercise, session.Placements, zoneID) {
			if occupant.ID != itemID {
				exercise.ApplyPlacement(session.Placements, occupant.ID, exercise.Unassigned)
			}
		}
	}

	exercise.Place(session, itemID, zoneID)
	if err := s.put(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *sessionService) ClearZone(ctx context.Context, sessionID, zoneID string) (*models.Session, error) {
	session, err := s.fetch(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !session.Exercise.HasZone(zoneID) {
		return nil, ErrZoneNotFound
	}

	exercise.ClearZonePlacements(session.Placements, zoneID)
	session.UpdatedAt = time.Now()
	if err := s.put(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *sessionService) ResetPlacements(ctx context.Context, sessionID string) (*models.Session, error) {
	session, err := s.fetch(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	exercise.ResetPlacements(session)
	if err := s.put(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// ===== PREVIEW STATE MACHINE =====

func (s *sessionService) EnterPreview(ctx context.Context, sessionID string) (*models.Session, error) {
	session, err := s.fetch(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	exercise.EnterPreview(session)
	if err := s.put(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *sessionService) CheckAnswers(ctx context.Context, sessionID string) (*models.Session, error) {
	op := s.ops.WithOperation(ctx, "check_answers")

	session, err := s.fetch(ctx, sessionID)
	if err != nil {
		op.LogResult(sessionID, err)
		return nil, err
	}

	if _, err := exercise.CheckAnswers(session); err != nil {
		if errors.Is(err, exercise.ErrNotPreviewing) {
			err = ErrNotPreviewing
		}
		op.LogResult(sessionID, err)
		return nil, err
	}

	if err := s.put(ctx, session); err != nil {
		op.LogResult(sessionID, err)
		return nil, err
	}

	op.LogResult(sessionID, nil)
	return session, nil
}

func (s *sessionService) HideResults(ctx context.Context, sessionID string) (*models.Session, error) {
	session, err := s.fetch(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := exercise.HideResults(session); err != nil {
		return nil, NewBusinessRuleError("hide_results", "session is not showing results", map[string]interface{}{
			"session_id": sessionID,
			"state":      string(session.State),
		})
	}

	if err := s.put(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *sessionService) ExitPreview(ctx context.Context, sessionID string) (*models.Session, error) {
	session, err := s.fetch(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	exercise.ExitPreview(session)
	if err := s.put(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// ===== INTERNAL HELPERS =====

func (s *sessionService) fetch(ctx context.Context, sessionID string) (*models.Session, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}

	var session models.Session
	err := s.cache.Get(ctx, sessionCacheKeyPrefix+sessionID, &session)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if session.Placements == nil {
		session.Placements = make(map[string]string)
	}
	return &session, nil
}

func (s *sessionService) put(ctx context.Context, session *models.Session) error {
	if err := s.cache.Set(ctx, sessionCacheKeyPrefix+session.ID, session, s.ttl); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}
