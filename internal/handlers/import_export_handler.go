package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/courseforge/dragdrop-service/internal/services"
	"github.com/courseforge/dragdrop-service/internal/utils"
)

type ImportExportHandler struct {
	BaseHandler
	importExportService services.ImportExportService
}

func NewImportExportHandler(importExportService services.ImportExportService, logger utils.Logger) *ImportExportHandler {
	return &ImportExportHandler{
		BaseHandler:         NewBaseHandler(logger),
		importExportService: importExportService,
	}
}

// ImportItems adds items to an exercise from an uploaded CSV or Excel file
// @Summary Import items
// @Description Parses the uploaded spreadsheet and appends its valid rows as items; rejected rows are reported per-row
// @Tags import-export
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or Excel file"
// @Success 200 {object} services.ImportResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /exercises/import [post]
func (h *ImportExportHandler) ImportItems(c *gin.Context) {
	loc, ok := ParseLocator(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing file upload",
			Details: err.Error(),
		})
		return
	}
	defer file.Close()

	h.LogRequest(c, "Importing items", "filename", header.Filename, "size", header.Size)

	resp, err := h.importExportService.ImportItemsFromFile(c.Request.Context(), loc, file, header.Filename)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ExportExercise downloads the exercise as xlsx, csv or json
func (h *ImportExportHandler) ExportExercise(c *gin.Context) {
	loc, ok := ParseLocator(c)
	if !ok {
		return
	}

	format := c.DefaultQuery("format", "xlsx")

	resp, err := h.importExportService.ExportExercise(c.Request.Context(), loc, format)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+resp.Filename+`"`)
	c.Data(http.StatusOK, resp.ContentType, resp.Data)
}

// handleServiceError maps service errors to appropriate HTTP responses
func (h *ImportExportHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var validationError *services.ValidationError
	if errors.As(err, &validationError) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: validationError.Message,
			Details: services.FormatError(err),
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrExerciseNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Exercise not found",
		})
	default:
		h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}
