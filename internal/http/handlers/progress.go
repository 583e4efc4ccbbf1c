package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/quildacademy/quild-backend/internal/domain/aggregates"
	"github.com/quildacademy/quild-backend/internal/http/response"
	"github.com/quildacademy/quild-backend/internal/services"
)

type ProgressHandler struct {
	progress services.ProgressService
}

func NewProgressHandler(progress services.ProgressService) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

// GET /api/progress
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	view, err := h.progress.GetProgress(c.Request.Context(), userID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GET /api/progress/resources?courseId=
func (h *ProgressHandler) GetCompletedResources(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	courseID, err := parseID(c.Query("courseId"), "courseId")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	done, err := h.progress.GetCompletedResources(c.Request.Context(), userID, courseID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"completedResources": done})
}

type toggleResourceRequest struct {
	CourseID   string `json:"courseId" binding:"required"`
	ResourceID string `json:"resourceId" binding:"required"`
}

// POST /api/progress/resources
func (h *ProgressHandler) ToggleResource(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	var req toggleResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErr(c, domainagg.Validation("http.toggle_resource", "courseId and resourceId are required"))
		return
	}
	courseID, err := parseID(req.CourseID, "courseId")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	resourceID, err := parseID(req.ResourceID, "resourceId")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	done, err := h.progress.ToggleResource(c.Request.Context(), userID, courseID, resourceID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"completedResources": done})
}
