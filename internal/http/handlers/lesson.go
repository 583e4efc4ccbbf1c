package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/quildacademy/quild-backend/internal/domain/aggregates"
	"github.com/quildacademy/quild-backend/internal/http/response"
	"github.com/quildacademy/quild-backend/internal/services"
)

type LessonHandler struct {
	catalog  services.CatalogService
	progress services.ProgressService
}

func NewLessonHandler(catalog services.CatalogService, progress services.ProgressService) *LessonHandler {
	return &LessonHandler{catalog: catalog, progress: progress}
}

// GET /api/lesson/:id
func (h *LessonHandler) GetLesson(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	lessonID, err := parseID(c.Param("id"), "lesson id")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	view, err := h.catalog.GetLesson(c.Request.Context(), userID, lessonID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type completeLessonRequest struct {
	TimeSpent int `json:"timeSpent"`
}

// POST /api/lesson/:id/complete
func (h *LessonHandler) CompleteLesson(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	lessonID, err := parseID(c.Param("id"), "lesson id")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	var req completeLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.RespondErr(c, domainagg.Validation("http.complete_lesson", "invalid request body"))
		return
	}

	sum, err := h.progress.CompleteLesson(c.Request.Context(), userID, lessonID, req.TimeSpent)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if sum.AlreadyCompleted {
		c.JSON(http.StatusOK, gin.H{
			"success":          false,
			"alreadyCompleted": true,
			"message":          "Lesson already completed",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Lesson completed successfully",
		"data": gin.H{
			"pointsEarned":   sum.PointsEarned,
			"newTotalPoints": sum.NewTotalPoints,
			"newStreak":      sum.NewStreak,
			"nextLesson":     sum.NextLesson,
		},
	})
}
