package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quildacademy/quild-backend/internal/services"
)

type SeedHandler struct {
	seeder services.SeedService
}

func NewSeedHandler(seeder services.SeedService) *SeedHandler {
	return &SeedHandler{seeder: seeder}
}

// POST /api/seed
func (h *SeedHandler) Seed(c *gin.Context) {
	report, err := h.seeder.Seed(c.Request.Context(), nil)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to seed database",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database seeded successfully!",
		"report":  report,
	})
}
