package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/courseforge/dragdrop-service/internal/store"
)

func ParseStringIDParam(c *gin.Context, param string) string {
	idStr := c.Param(param)
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID cannot be empty",
		})
		return ""
	}
	return idStr
}

// ParseLocator reads the course/slide pair from query parameters. Both absent
// is the sandbox; exactly one absent is rejected since half a locator
// addresses nothing.
func ParseLocator(c *gin.Context) (store.Locator, bool) {
	loc := store.Locator{
		CourseID: strings.TrimSpace(c.Query("course_id")),
		SlideID:  strings.TrimSpace(c.Query("slide_id")),
	}
	if (loc.CourseID == "") != (loc.SlideID == "") {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid locator",
			Details: "course_id and slide_id must be provided together",
		})
		return store.Locator{}, false
	}
	return loc, true
}
