package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/courseforge/dragdrop-service/internal/services"
	"github.com/courseforge/dragdrop-service/internal/utils"
)

type SessionHandler struct {
	BaseHandler
	sessionService services.SessionService
}

func NewSessionHandler(sessionService services.SessionService, logger utils.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler:    NewBaseHandler(logger),
		sessionService: sessionService,
	}
}

// StartSession opens a playback session on an exercise
// @Summary Start session
// @Description Loads the exercise and opens a fresh session: all items unassigned, state editing
// @Tags sessions
// @Produce json
// @Param course_id query string false "Course ID (omit for sandbox)"
// @Param slide_id query string false "Slide ID (omit for sandbox)"
// @Success 201 {object} models.Session
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /sessions [post]
func (h *SessionHandler) StartSession(c *gin.Context) {
	loc, ok := ParseLocator(c)
	if !ok {
		return
	}

	session, err := h.sessionService.Start(c.Request.Context(), loc)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	session, err := h.sessionService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) EndSession(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	if err := h.sessionService.End(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Session ended"})
}

// ===== PLACEMENT OPERATIONS =====

type placeItemRequest struct {
	ItemID string `json:"item_id" binding:"required"`
	ZoneID string `json:"zone_id"`
}

// PlaceItem records a drag outcome; an empty zone_id returns the item to the
// unassigned pool
func (h *SessionHandler) PlaceItem(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req placeItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	session, err := h.sessionService.PlaceItem(c.Request.Context(), id, req.ItemID, req.ZoneID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) ClearZone(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	zoneID := ParseStringIDParam(c, "zone_id")
	if zoneID == "" {
		return
	}

	session, err := h.sessionService.ClearZone(c.Request.Context(), id, zoneID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) ResetPlacements(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	session, err := h.sessionService.ResetPlacements(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// ===== PREVIEW STATE MACHINE =====

func (h *SessionHandler) EnterPreview(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	session, err := h.sessionService.EnterPreview(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// CheckAnswers scores the current placements and shows the results panel
func (h *SessionHandler) CheckAnswers(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	session, err := h.sessionService.CheckAnswers(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) HideResults(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	session, err := h.sessionService.HideResults(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) ExitPreview(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	session, err := h.sessionService.ExitPreview(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// handleServiceError maps service errors to appropriate HTTP responses
func (h *SessionHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: businessRuleError.Message,
			Details: map[string]interface{}{
				"rule":    businessRuleError.Rule,
				"context": businessRuleError.Context,
			},
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Session not found",
		})
	case errors.Is(err, services.ErrItemNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Item not found",
		})
	case errors.Is(err, services.ErrZoneNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Zone not found",
		})
	case errors.Is(err, services.ErrNotPreviewing):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Answers can only be checked in preview",
		})
	default:
		h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}
