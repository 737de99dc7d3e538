package services

import (
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"time"

	"github.com/courseforge/dragdrop-service/internal/cache"
	"github.com/courseforge/dragdrop-service/internal/events"
	"github.com/courseforge/dragdrop-service/internal/models"
	"github.com/courseforge/dragdrop-service/internal/store"
	"github.com/courseforge/dragdrop-service/internal/validator"
)

// ===== SERVICE INTERFACES =====

// ExerciseService owns the authored document: loading, autosave, structural
// edits and validation. Every mutation persists the full document through the
// fallback store, so a remote outage degrades to the local copy instead of
// losing the edit.
type ExerciseService interface {
	Get(ctx context.Context, loc store.Locator) (*ExerciseResponse, error)
	Save(ctx context.Context, loc store.Locator, ex *models.Exercise) (*SaveResponse, error)
	Delete(ctx context.Context, loc store.Locator) error
	List(ctx context.Context, courseID string) ([]*ExerciseListEntry, error)

	AddZone(ctx context.Context, loc store.Locator, req ZoneRequest) (*SaveResponse, error)
	UpdateZone(ctx context.Context, loc store.Locator, zoneID string, req ZoneRequest) (*SaveResponse, error)
	RemoveZone(ctx context.Context, loc store.Locator, zoneID string) (*SaveResponse, error)

	AddItem(ctx context.Context, loc store.Locator, req ItemRequest) (*SaveResponse, error)
	UpdateItem(ctx context.Context, loc store.Locator, itemID string, req ItemRequest) (*SaveResponse, error)
	RemoveItem(ctx context.Context, loc store.Locator, itemID string) (*SaveResponse, error)

	UpdateSettings(ctx context.Context, loc store.Locator, req SettingsRequest) (*SaveResponse, error)
	UpdateInstructions(ctx context.Context, loc store.Locator, instructions *string) (*SaveResponse, error)

	Validate(ctx context.Context, ex *models.Exercise) *ValidationResponse
}

// SessionService owns playback state: one session per open exercise, holding
// placements and the preview state machine. Sessions live in the cache with a
// TTL and are never written to the document stores.
type SessionService interface {
	Start(ctx context.Context, loc store.Locator) (*models.Session, error)
	Get(ctx context.Context, sessionID string) (*models.Session, error)
	End(ctx context.Context, sessionID string) error

	PlaceItem(ctx context.Context, sessionID, itemID, zoneID string) (*models.Session, error)
	ClearZone(ctx context.Context, sessionID, zoneID string) (*models.Session, error)
	ResetPlacements(ctx context.Context, sessionID string) (*models.Session, error)

	EnterPreview(ctx context.Context, sessionID string) (*models.Session, error)
	CheckAnswers(ctx context.Context, sessionID string) (*models.Session, error)
	HideResults(ctx context.Context, sessionID string) (*models.Session, error)
	ExitPreview(ctx context.Context, sessionID string) (*models.Session, error)
}

// ImportExportService moves items in and out of an exercise as spreadsheet
// rows, and exports whole documents.
type ImportExportService interface {
	ImportItemsFromFile(ctx context.Context, loc store.Locator, file multipart.File, filename string) (*ImportResponse, error)
	ImportItemsFromCSV(ctx context.Context, loc store.Locator, reader io.Reader) (*ImportResponse, error)
	ImportItemsFromExcel(ctx context.Context, loc store.Locator, reader io.Reader) (*ImportResponse, error)

	ExportExercise(ctx context.Context, loc store.Locator, format string) (*ExportResponse, error)
}

// ===== REQUEST / RESPONSE DTOS =====

type ZoneRequest struct {
	Title       string   `json:"title" validate:"required,min=1,max=200"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=1000"`
	Categories  []string `json:"categories,omitempty"`
	Color       string   `json:"color,omitempty" validate:"omitempty,hex_color"`
}

type ItemRequest struct {
	Text              string   `json:"text" validate:"required,min=1,max=500"`
	Color             string   `json:"color,omitempty" validate:"omitempty,hex_color"`
	CorrectZoneID     string   `json:"correct_zone_id,omitempty"`
	AltCorrectZoneIDs []string `json:"alt_correct_zone_ids,omitempty"`
	Points            int      `json:"points,omitempty" validate:"omitempty,min=1"`
	CorrectFeedback   *string  `json:"correct_feedback,omitempty" validate:"omitempty,max=500"`
	IncorrectFeedback *string  `json:"incorrect_feedback,omitempty" validate:"omitempty,max=500"`
}

// SettingsRequest is a partial settings update; nil fields keep their current
// value.
type SettingsRequest struct {
	ShuffleItems         *bool               `json:"shuffle_items,omitempty"`
	AllowMultiplePerZone *bool               `json:"allow_multiple_per_zone,omitempty"`
	SnapToZone           *bool               `json:"snap_to_zone,omitempty"`
	ScoringMode          *models.ScoringMode `json:"scoring_mode,omitempty" validate:"omitempty,scoring_mode"`
	ShowInstantFeedback  *bool               `json:"show_instant_feedback,omitempty"`
	Colors               *models.ColorSet    `json:"colors,omitempty"`
}

type ExerciseResponse struct {
	Exercise *models.Exercise       `json:"exercise"`
	Locator  store.Locator          `json:"locator"`
	Issues   []ValidationIssue      `json:"issues,omitempty"`
	Savable  bool                   `json:"savable"`
	Source   models.StorageLocation `json:"source,omitempty"`
}

// SaveResponse reports a persisted mutation. Degraded means the save landed
// only in the local store; callers surface this to the author.
type SaveResponse struct {
	Exercise *models.Exercise       `json:"exercise"`
	Location models.StorageLocation `json:"location"`
	Degraded bool                   `json:"degraded"`
}

type ExerciseListEntry struct {
	CourseID  string `json:"course_id"`
	SlideID   string `json:"slide_id"`
	ZoneCount int    `json:"zone_count"`
	ItemCount int    `json:"item_count"`
	UpdatedAt int64  `json:"updated_at"`
}

type ValidationIssue struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

type ValidationResponse struct {
	Valid  bool              `json:"valid"`
	Issues []ValidationIssue `json:"issues,omitempty"`
}

type ImportResponse struct {
	Summary  *models.ImportSummary `json:"summary"`
	Exercise *models.Exercise      `json:"exercise"`
	Degraded bool                  `json:"degraded"`
}

type ExportResponse struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
}

// ===== SERVICE MANAGER =====

// ServiceManager wires the services over one shared set of dependencies.
type ServiceManager interface {
	Exercise() ExerciseService
	Session() SessionService
	ImportExport() ImportExportService
}

type serviceManager struct {
	exercise     ExerciseService
	session      SessionService
	importExport ImportExportService
}

type Dependencies struct {
	Store      *store.FallbackStore
	Lister     ExerciseLister
	Cache      cache.CacheService
	Events     events.EventPublisher
	Validator  *validator.Validator
	Logger     *slog.Logger
	SessionTTL time.Duration
}

// ExerciseLister is the optional remote-store capability behind List; the
// local fallback store has no course index.
type ExerciseLister interface {
	List(ctx context.Context, courseID string) ([]*models.ExerciseRecord, error)
}

func NewServiceManager(deps Dependencies) ServiceManager {
	exerciseSvc := NewExerciseService(deps.Store, deps.Lister, deps.Cache, deps.Events, deps.Validator, deps.Logger)
	sessionSvc := NewSessionService(deps.Store, deps.Cache, deps.Logger, deps.SessionTTL)
	importExportSvc := NewImportExportService(exerciseSvc, deps.Logger)

	return &serviceManager{
		exercise:     exerciseSvc,
		session:      sessionSvc,
		importExport: importExportSvc,
	}
}

func (m *serviceManager) Exercise() ExerciseService         { return m.exercise }
func (m *serviceManager) Session() SessionService           { return m.session }
func (m *serviceManager) ImportExport() ImportExportService { return m.importExport }
