package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/courseforge/dragdrop-service/internal/utils"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

// NewBaseHandler creates a new base handler with logging capability
func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

// requestLogger resolves the request-scoped logger stored by
// utils.ContextLogger. It already carries request_id, method and path, so the
// helpers below only add call-site fields.
func (h *BaseHandler) requestLogger(c *gin.Context) utils.Logger {
	return utils.GetLoggerFromContext(c, h.logger)
}

// LogRequest logs incoming HTTP requests with context information
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"remote_addr", c.ClientIP(),
		"timestamp", time.Now().Format(time.RFC3339),
	}
	fields = append(fields, additionalFields...)

	h.requestLogger(c).Info(message, fields...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	h.requestLogger(c).LogError(err, message, additionalFields...)
}

// LogWarn logs warning messages with context
func (h *BaseHandler) LogWarn(c *gin.Context, message string, additionalFields ...interface{}) {
	h.requestLogger(c).Warn(message, additionalFields...)
}

// RespondWithError sends a consistent error response and logs it
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, message string, err error, details ...interface{}) {
	errorResp := ErrorResponse{
		Message: message,
	}
	if len(details) > 0 {
		errorResp.Details = details[0]
	}

	if err != nil {
		h.LogError(c, err, message, "status_code", statusCode)
	} else {
		h.LogWarn(c, message, "status_code", statusCode)
	}

	c.JSON(statusCode, errorResp)
}
