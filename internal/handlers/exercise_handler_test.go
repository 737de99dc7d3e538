package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courseforge/dragdrop-service/internal/cache"
	"github.com/courseforge/dragdrop-service/internal/events"
	"github.com/courseforge/dragdrop-service/internal/models"
	"github.com/courseforge/dragdrop-service/internal/services"
	"github.com/courseforge/dragdrop-service/internal/store"
	"github.com/courseforge/dragdrop-service/internal/utils"
	"github.com/courseforge/dragdrop-service/internal/validator"
)

type fakeDocumentStore struct {
	docs map[string][]byte
}

func newFakeDocumentStore() *fakeDocumentStore {
	return &fakeDocumentStore{docs: make(map[string][]byte)}
}

func (s *fakeDocumentStore) Load(_ context.Context, loc store.Locator) (*models.Exercise, error) {
	data, ok := s.docs[loc.Key()]
	if !ok {
		return nil, store.ErrNotFound
	}
	return store.DecodeDocument(data)
}

func (s *fakeDocumentStore) Save(_ context.Context, ex *models.Exercise, loc store.Locator) error {
	data, err := store.EncodeDocument(ex)
	if err != nil {
		return err
	}
	s.docs[loc.Key()] = data
	return nil
}

func (s *fakeDocumentStore) Delete(_ context.Context, loc store.Locator) error {
	if _, ok := s.docs[loc.Key()]; !ok {
		return store.ErrNotFound
	}
	delete(s.docs, loc.Key())
	return nil
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.Default()

	manager := services.NewServiceManager(services.Dependencies{
		Store:      store.NewFallbackStore(newFakeDocumentStore(), newFakeDocumentStore(), logger),
		Cache:      cache.NewMemoryCache(),
		Events:     events.NewMockEventPublisher(logger),
		Validator:  validator.New(),
		Logger:     logger,
		SessionTTL: time.Hour,
	})

	router := gin.New()
	NewHandlerManager(manager, utils.NewSlogLogger(logger)).SetupRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "dragdrop-service")
}

func TestGetExercise_SandboxReturnsEmptyDocument(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodGet, "/api/v1/exercises", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp services.ExerciseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Savable)
	assert.Empty(t, resp.Exercise.Zones)
}

func TestGetExercise_HalfLocatorRejected(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodGet, "/api/v1/exercises?course_id=c1", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthoringFlowOverHTTP(t *testing.T) {
	router := newTestRouter()

	// Add zones and an item in the sandbox.
	w := doJSON(t, router, http.MethodPost, "/api/v1/exercises/zones", services.ZoneRequest{Title: "Fruits"})
	require.Equal(t, http.StatusCreated, w.Code)

	var zoneResp services.SaveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &zoneResp))
	zoneID := zoneResp.Exercise.Zones[0].ID

	w = doJSON(t, router, http.MethodPost, "/api/v1/exercises/items", services.ItemRequest{Text: "Apple", CorrectZoneID: zoneID})
	require.Equal(t, http.StatusCreated, w.Code)

	// The document is now savable.
	w = doJSON(t, router, http.MethodGet, "/api/v1/exercises", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var getResp services.ExerciseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &getResp))
	assert.True(t, getResp.Savable)
}

func TestAddZone_EmptyTitleRejected(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/api/v1/exercises/zones", services.ZoneRequest{Title: ""})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionFlowOverHTTP(t *testing.T) {
	router := newTestRouter()

	// Seed the sandbox exercise.
	w := doJSON(t, router, http.MethodPost, "/api/v1/exercises/zones", services.ZoneRequest{Title: "Fruits"})
	require.Equal(t, http.StatusCreated, w.Code)
	var zoneResp services.SaveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &zoneResp))
	zoneID := zoneResp.Exercise.Zones[0].ID

	w = doJSON(t, router, http.MethodPost, "/api/v1/exercises/items", services.ItemRequest{Text: "Apple", CorrectZoneID: zoneID})
	require.Equal(t, http.StatusCreated, w.Code)
	var itemResp services.SaveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &itemResp))
	itemID := itemResp.Exercise.Items[0].ID

	// Open a session and drive preview.
	w = doJSON(t, router, http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var session models.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))

	w = doJSON(t, router, http.MethodPost, "/api/v1/sessions/"+session.ID+"/placements",
		map[string]string{"item_id": itemID, "zone_id": zoneID})
	require.Equal(t, http.StatusOK, w.Code)

	// Checking before preview is a conflict.
	w = doJSON(t, router, http.MethodPost, "/api/v1/sessions/"+session.ID+"/check", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/sessions/"+session.ID+"/preview", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/sessions/"+session.ID+"/check", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var checked models.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &checked))
	assert.Equal(t, models.StateShowingResults, checked.State)
	if assert.NotNil(t, checked.Results) {
		assert.Equal(t, 1, checked.Results.EarnedPoints)
	}
}

func TestGetSession_Unknown(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodGet, "/api/v1/sessions/nope", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
