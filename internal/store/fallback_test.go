package store

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/courseforge/dragdrop-service/internal/models"
)

// memStore is an in-memory DocumentStore used to drive FallbackStore through
// its failure paths.
type memStore struct {
	docs    map[string][]byte
	failAll bool
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[string][]byte)}
}

func (m *memStore) Load(_ context.Context, loc Locator) (*models.Exercise, error) {
	if m.failAll {
		return nil, errors.New("store unavailable")
	}
	data, ok := m.docs[loc.Key()]
	if !ok {
		return nil, ErrNotFound
	}
	return DecodeDocument(data)
}

func (m *memStore) Save(_ context.Context, ex *models.Exercise, loc Locator) error {
	if m.failAll {
		return errors.New("store unavailable")
	}
	data, err := EncodeDocument(ex)
	if err != nil {
		return err
	}
	m.docs[loc.Key()] = data
	return nil
}

func (m *memStore) Delete(_ context.Context, loc Locator) error {
	if m.failAll {
		return errors.New("store unavailable")
	}
	if _, ok := m.docs[loc.Key()]; !ok {
		return ErrNotFound
	}
	delete(m.docs, loc.Key())
	return nil
}

func testLogger() *slog.Logger {
	return slog.Default()
}

func sampleExercise() *models.Exercise {
	ex := models.NewExercise()
	ex.Zones = append(ex.Zones, models.Zone{ID: "z1", Title: "Fruits"})
	ex.Items = append(ex.Items, models.Item{ID: "i1", Text: "Apple", CorrectZoneID: "z1"})
	return ex
}

func TestLocator_SandboxKey(t *testing.T) {
	assert.True(t, Locator{}.IsSandbox())
	assert.True(t, Locator{CourseID: "c1"}.IsSandbox())
	assert.Equal(t, "dragdrop.sandbox", Locator{}.Key())
	assert.Equal(t, "c1/s1", Locator{CourseID: "c1", SlideID: "s1"}.Key())
	assert.False(t, Locator{CourseID: "c1", SlideID: "s1"}.IsSandbox())
}

func TestFallbackStore_SaveRemoteMirrorsLocal(t *testing.T) {
	remote, local := newMemStore(), newMemStore()
	fs := NewFallbackStore(remote, local, testLogger())
	loc := Locator{CourseID: "c1", SlideID: "s1"}

	result, err := fs.Save(context.Background(), sampleExercise(), loc)

	assert.NoError(t, err)
	assert.Equal(t, models.StorageRemote, result.Location)
	assert.False(t, result.Degraded)
	assert.Contains(t, remote.docs, "c1/s1")
	assert.Contains(t, local.docs, "c1/s1")
}

func TestFallbackStore_SaveDegradesOnRemoteFailure(t *testing.T) {
	remote, local := newMemStore(), newMemStore()
	remote.failAll = true
	fs := NewFallbackStore(remote, local, testLogger())
	loc := Locator{CourseID: "c1", SlideID: "s1"}

	result, err := fs.Save(context.Background(), sampleExercise(), loc)

	assert.NoError(t, err)
	assert.Equal(t, models.StorageLocal, result.Location)
	assert.True(t, result.Degraded)
	assert.Contains(t, local.docs, "c1/s1")
}

func TestFallbackStore_SaveFailsWhenBothStoresFail(t *testing.T) {
	remote, local := newMemStore(), newMemStore()
	remote.failAll = true
	local.failAll = true
	fs := NewFallbackStore(remote, local, testLogger())

	_, err := fs.Save(context.Background(), sampleExercise(), Locator{CourseID: "c1", SlideID: "s1"})

	assert.Error(t, err)
}

func TestFallbackStore_SandboxNeverTouchesRemote(t *testing.T) {
	remote, local := newMemStore(), newMemStore()
	remote.failAll = true
	fs := NewFallbackStore(remote, local, testLogger())

	result, err := fs.Save(context.Background(), sampleExercise(), Locator{})

	assert.NoError(t, err)
	assert.Equal(t, models.StorageLocal, result.Location)
	assert.False(t, result.Degraded)

	loaded, err := fs.Load(context.Background(), Locator{})
	assert.NoError(t, err)
	assert.Len(t, loaded.Items, 1)
}

func TestFallbackStore_LoadFallsBackToLocal(t *testing.T) {
	remote, local := newMemStore(), newMemStore()
	loc := Locator{CourseID: "c1", SlideID: "s1"}
	assert.NoError(t, local.Save(context.Background(), sampleExercise(), loc))
	remote.failAll = true
	fs := NewFallbackStore(remote, local, testLogger())

	loaded, err := fs.Load(context.Background(), loc)

	assert.NoError(t, err)
	assert.Len(t, loaded.Zones, 1)
}

func TestFallbackStore_LoadWithSourceReportsServingStore(t *testing.T) {
	remote, local := newMemStore(), newMemStore()
	loc := Locator{CourseID: "c1", SlideID: "s1"}
	fs := NewFallbackStore(remote, local, testLogger())

	assert.NoError(t, remote.Save(context.Background(), sampleExercise(), loc))
	_, source, err := fs.LoadWithSource(context.Background(), loc)
	assert.NoError(t, err)
	assert.Equal(t, models.StorageRemote, source)

	remote.failAll = true
	assert.NoError(t, local.Save(context.Background(), sampleExercise(), loc))
	_, source, err = fs.LoadWithSource(context.Background(), loc)
	assert.NoError(t, err)
	assert.Equal(t, models.StorageLocal, source)
}

func TestFallbackStore_LoadCorruptLocalResetsToEmpty(t *testing.T) {
	remote, local := newMemStore(), newMemStore()
	local.docs["dragdrop.sandbox"] = []byte(`{not json`)
	fs := NewFallbackStore(remote, local, testLogger())

	loaded, err := fs.Load(context.Background(), Locator{})

	assert.NoError(t, err)
	assert.Empty(t, loaded.Zones)
	assert.Empty(t, loaded.Items)
	assert.Equal(t, models.SchemaVersion, loaded.Version)
}

func TestFallbackStore_LoadMissingEverywhere(t *testing.T) {
	fs := NewFallbackStore(newMemStore(), newMemStore(), testLogger())

	_, err := fs.Load(context.Background(), Locator{CourseID: "c1", SlideID: "s1"})

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFallbackStore_DeleteFromBoth(t *testing.T) {
	remote, local := newMemStore(), newMemStore()
	fs := NewFallbackStore(remote, local, testLogger())
	loc := Locator{CourseID: "c1", SlideID: "s1"}
	_, err := fs.Save(context.Background(), sampleExercise(), loc)
	assert.NoError(t, err)

	assert.NoError(t, fs.Delete(context.Background(), loc))
	assert.NotContains(t, remote.docs, "c1/s1")
	assert.NotContains(t, local.docs, "c1/s1")

	assert.ErrorIs(t, fs.Delete(context.Background(), loc), ErrNotFound)
}

func TestDecodeDocument_RejectsUnknownVersion(t *testing.T) {
	_, err := DecodeDocument([]byte(`{"version": 99}`))

	assert.ErrorIs(t, err, ErrCorruptDocument)
}

func TestDecodeDocument_NormalizesNilSlices(t *testing.T) {
	ex, err := DecodeDocument([]byte(`{"version": 1}`))

	assert.NoError(t, err)
	assert.NotNil(t, ex.Zones)
	assert.NotNil(t, ex.Items)
	assert.Equal(t, models.ScoringPerItem, ex.Settings.ScoringMode)
	assert.True(t, ex.Settings.AllowMultiplePerZone)
}
