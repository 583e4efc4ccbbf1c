package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quildacademy/quild-backend/internal/http/response"
	"github.com/quildacademy/quild-backend/internal/services"
)

type CourseHandler struct {
	courses services.CourseService
}

func NewCourseHandler(courses services.CourseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// GET /api/courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id, err := parseID(c.Param("id"), "course id")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	course, err := h.courses.GetCourse(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}
