package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/courseforge/dragdrop-service/internal/models"
)

// FallbackStore composes the remote course platform store with the local
// fallback. Sandbox locators never touch the remote store. Remote save
// failures degrade to a local save and are reported through
// SaveResult.Degraded so the caller can notify the author; they are not
// errors. A corrupt stored document resets to an empty exercise instead of
// failing the load.
type FallbackStore struct {
	remote DocumentStore
	local  DocumentStore
	logger *slog.Logger
}

func NewFallbackStore(remote, local DocumentStore, logger *slog.Logger) *FallbackStore {
	return &FallbackStore{
		remote: remote,
		local:  local,
		logger: logger,
	}
}

// Load fetches the document for the locator. Remote failures (including a
// remote miss, which happens after a degraded save) fall through to the local
// copy.
func (f *FallbackStore) Load(ctx context.Context, loc Locator) (*models.Exercise, error) {
	ex, _, err := f.LoadWithSource(ctx, loc)
	return ex, err
}

// LoadWithSource loads like Load and additionally reports which store served
// the document.
func (f *FallbackStore) LoadWithSource(ctx context.Context, loc Locator) (*models.Exercise, models.StorageLocation, error) {
	if loc.IsSandbox() {
		ex, err := f.loadRecovering(ctx, f.local, loc)
		if err != nil {
			return nil, "", err
		}
		return ex, models.StorageLocal, nil
	}

	ex, err := f.remote.Load(ctx, loc)
	if err == nil {
		return ex, models.StorageRemote, nil
	}
	if !IsNotFoundError(err) {
		f.logger.Warn("remote load failed, falling back to local store",
			"course_id", loc.CourseID,
			"slide_id", loc.SlideID,
			"error", err)
	}

	ex, err = f.loadRecovering(ctx, f.local, loc)
	if err != nil {
		return nil, "", err
	}
	return ex, models.StorageLocal, nil
}

// loadRecovering loads from one store, converting a corrupt document into a
// fresh empty exercise. Losing a broken local copy beats crashing the
// authoring tool.
func (f *FallbackStore) loadRecovering(ctx context.Context, s DocumentStore, loc Locator) (*models.Exercise, error) {
	ex, err := s.Load(ctx, loc)
	if err == nil {
		return ex, nil
	}
	if errors.Is(err, ErrCorruptDocument) {
		f.logger.Warn("stored document is corrupt, resetting to empty exercise",
			"key", loc.Key(),
			"error", err)
		return models.NewExercise(), nil
	}
	return nil, err
}

// Save writes the full document. Sandbox saves go local only. Otherwise the
// remote store is tried first; on failure the document is written locally and
// the result is marked degraded. Only a failure of both stores is an error.
func (f *FallbackStore) Save(ctx context.Context, ex *models.Exercise, loc Locator) (models.SaveResult, error) {
	if loc.IsSandbox() {
		if err := f.local.Save(ctx, ex, loc); err != nil {
			return models.SaveResult{}, err
		}
		return models.SaveResult{Location: models.StorageLocal}, nil
	}

	remoteErr := f.remote.Save(ctx, ex, loc)
	if remoteErr == nil {
		// Keep the local copy in sync so a later remote outage still loads
		// the latest document.
		if err := f.local.Save(ctx, ex, loc); err != nil {
			f.logger.Warn("local mirror save failed",
				"key", loc.Key(),
				"error", err)
		}
		return models.SaveResult{Location: models.StorageRemote}, nil
	}

	f.logger.Warn("remote save failed, degrading to local store",
		"course_id", loc.CourseID,
		"slide_id", loc.SlideID,
		"error", remoteErr)

	if err := f.local.Save(ctx, ex, loc); err != nil {
		return models.SaveResult{}, fmt.Errorf("remote save failed (%v) and local fallback failed: %w", remoteErr, err)
	}

	return models.SaveResult{Location: models.StorageLocal, Degraded: true}, nil
}

// Delete removes the document from both stores. A miss in either store is
// ignored as long as one of them held the document.
func (f *FallbackStore) Delete(ctx context.Context, loc Locator) error {
	if loc.IsSandbox() {
		return f.local.Delete(ctx, loc)
	}

	remoteErr := f.remote.Delete(ctx, loc)
	localErr := f.local.Delete(ctx, loc)

	if remoteErr == nil || localErr == nil {
		return nil
	}
	if IsNotFoundError(remoteErr) && IsNotFoundError(localErr) {
		return ErrNotFound
	}
	return fmt.Errorf("failed to delete exercise document: remote: %v, local: %v", remoteErr, localErr)
}
