package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/courseforge/dragdrop-service/internal/models"
	"github.com/courseforge/dragdrop-service/internal/services"
	"github.com/courseforge/dragdrop-service/internal/utils"
)

type ExerciseHandler struct {
	BaseHandler
	exerciseService services.ExerciseService
}

func NewExerciseHandler(exerciseService services.ExerciseService, logger utils.Logger) *ExerciseHandler {
	return &ExerciseHandler{
		BaseHandler:     NewBaseHandler(logger),
		exerciseService: exerciseService,
	}
}

// GetExercise loads the exercise document for a locator
// @Summary Get exercise
// @Description Loads the exercise document, falling back to the local copy when the course platform is unreachable
// @Tags exercises
// @Produce json
// @Param course_id query string false "Course ID (omit for sandbox)"
// @Param slide_id query string false "Slide ID (omit for sandbox)"
// @Success 200 {object} services.ExerciseResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /exercises [get]
func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	loc, ok := ParseLocator(c)
	if !ok {
		return
	}

	resp, err := h.exerciseService.Get(c.Request.Context(), loc)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SaveExercise persists the full exercise document
// @Summary Save exercise
// @Description Validates and persists the document; a remote outage degrades to the local store instead of failing
// @Tags exercises
// @Accept json
// @Produce json
// @Param exercise body models.Exercise true "Exercise document"
// @Success 200 {object} services.SaveResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /exercises [put]
func (h *ExerciseHandler) SaveExercise(c *gin.Context) {
	loc, ok := ParseLocator(c)
	if !ok {
		return
	}

	var ex models.Exercise
	if err := c.ShouldBindJSON(&ex); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.exerciseService.Save(c.Request.Context(), loc, &ex)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteExercise removes the exercise document
func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	loc, ok := ParseLocator(c)
	if !ok {
		return
	}

	if err := h.exerciseService.Delete(c.Request.Context(), loc); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Exercise deleted"})
}

// ListExercises lists all exercises of a course
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	courseID := ParseStringIDParam(c, "course_id")
	if courseID == "" {
		return
	}

	entries, err := h.exerciseService.List(c.Request.Context(), courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Exercises listed", Data: entries})
}

// ValidateExercise reports authoring issues without saving anything
func (h *ExerciseHandler) ValidateExercise(c *gin.Context) {
	var ex models.Exercise
	if err := c.ShouldBindJSON(&ex); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, h.exerciseService.Validate(c.Request.Context(), &ex))
}

// ===== ZONE OPERATIONS =====

func (h *ExerciseHandler) AddZone(c *gin.Context) {
	loc, ok := ParseLocator(c)
	if !ok {
		return
	}

	var req services.ZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.exerciseService.AddZone(c.Request.Context(), loc, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *ExerciseHandler) UpdateZone(c *gin.Context) {
	loc, ok := ParseLocator(c)
	if !ok {
		return
	}
	zoneID := ParseStringIDParam(c, "zone_id")
	if zoneID == "" {
		return
	}

	var req services.ZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.exerciseService.UpdateZone(c.Request.Context(), loc, zoneID, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ExerciseHandler) RemoveZone(c *gin.Context) {
	loc, ok := ParseLocator(c)
	if !ok {
		return
	}
	zoneID := ParseStringIDParam(c, "zone_id")
	if zoneID == "" {
		return
	}

	resp, err := h.exerciseService.RemoveZone(c.Request.Context(), loc, zoneID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ===== ITEM OPERATIONS =====

func (h *ExerciseHandler) AddItem(c *gin.Context) {
	loc, ok := ParseLocator(c)
	if !ok {
		return
	}

	var req services.ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.exerciseService.AddItem(c.Request.Context(), loc, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *ExerciseHandler) UpdateItem(c *gin.Context) {
	loc, ok := ParseLocator(c)
	if !ok {
		return
	}
	itemID := ParseStringIDParam(c, "item_id")
	if itemID == "" {
		return
	}

	var req services.ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.exerciseService.UpdateItem(c.Request.Context(), loc, itemID, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ExerciseHandler) RemoveItem(c *gin.Context) {
	loc, ok := ParseLocator(c)
	if !ok {
		return
	}
	itemID := ParseStringIDParam(c, "item_id")
	if itemID == "" {
		return
	}

	resp, err := h.exerciseService.RemoveItem(c.Request.Context(), loc, itemID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ===== SETTINGS AND INSTRUCTIONS =====

func (h *ExerciseHandler) UpdateSettings(c *gin.Context) {
	loc, ok := ParseLocator(c)
	if !ok {
		return
	}

	var req services.SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.exerciseService.UpdateSettings(c.Request.Context(), loc, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

type updateInstructionsRequest struct {
	Instructions *string `json:"instructions"`
}

func (h *ExerciseHandler) UpdateInstructions(c *gin.Context) {
	loc, ok := ParseLocator(c)
	if !ok {
		return
	}

	var req updateInstructionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.exerciseService.UpdateInstructions(c.Request.Context(), loc, req.Instructions)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// handleServiceError maps service errors to appropriate HTTP responses
func (h *ExerciseHandler) handleServiceError(c *gin.Context, err error) {
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
	case errors.Is(err, services.ErrExerciseNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Exercise not found",
		})
	case errors.Is(err, services.ErrZoneNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Zone not found",
		})
	case errors.Is(err, services.ErrItemNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Item not found",
		})
	case errors.Is(err, services.ErrExerciseNotSavable):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: "Exercise has validation errors and cannot be saved",
		})
	case errors.Is(err, services.ErrBadRequest):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Bad request",
		})
	default:
		h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}
