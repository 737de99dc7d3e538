package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/courseforge/dragdrop-service/internal/services"
	"github.com/courseforge/dragdrop-service/internal/utils"
)

type HandlerManager struct {
	exerciseHandler     *ExerciseHandler
	sessionHandler      *SessionHandler
	importExportHandler *ImportExportHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		exerciseHandler:     NewExerciseHandler(serviceManager.Exercise(), logger),
		sessionHandler:      NewSessionHandler(serviceManager.Session(), logger),
		importExportHandler: NewImportExportHandler(serviceManager.ImportExport(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Exercise document routes; locator comes from course_id/slide_id
		// query parameters, both absent meaning the sandbox document
		exercises := v1.Group("/exercises")
		{
			exercises.GET("", hm.exerciseHandler.GetExercise)
			exercises.PUT("", hm.exerciseHandler.SaveExercise)
			exercises.DELETE("", hm.exerciseHandler.DeleteExercise)
			exercises.POST("/validate", hm.exerciseHandler.ValidateExercise)

			exercises.POST("/zones", hm.exerciseHandler.AddZone)
			exercises.PUT("/zones/:zone_id", hm.exerciseHandler.UpdateZone)
			exercises.DELETE("/zones/:zone_id", hm.exerciseHandler.RemoveZone)

			exercises.POST("/items", hm.exerciseHandler.AddItem)
			exercises.PUT("/items/:item_id", hm.exerciseHandler.UpdateItem)
			exercises.DELETE("/items/:item_id", hm.exerciseHandler.RemoveItem)

			exercises.PUT("/settings", hm.exerciseHandler.UpdateSettings)
			exercises.PUT("/instructions", hm.exerciseHandler.UpdateInstructions)

			exercises.POST("/import", hm.importExportHandler.ImportItems)
			exercises.GET("/export", hm.importExportHandler.ExportExercise)
		}

		// Course listing
		courses := v1.Group("/courses")
		{
			courses.GET("/:course_id/exercises", hm.exerciseHandler.ListExercises)
		}

		// Playback session routes
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", hm.sessionHandler.StartSession)
			sessions.GET("/:id", hm.sessionHandler.GetSession)
			sessions.DELETE("/:id", hm.sessionHandler.EndSession)

			sessions.POST("/:id/placements", hm.sessionHandler.PlaceItem)
			sessions.DELETE("/:id/placements/zone/:zone_id", hm.sessionHandler.ClearZone)
			sessions.POST("/:id/placements/reset", hm.sessionHandler.ResetPlacements)

			sessions.POST("/:id/preview", hm.sessionHandler.EnterPreview)
			sessions.POST("/:id/check", hm.sessionHandler.CheckAnswers)
			sessions.POST("/:id/hide-results", hm.sessionHandler.HideResults)
			sessions.POST("/:id/exit-preview", hm.sessionHandler.ExitPreview)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "dragdrop-service",
		})
	})
}
