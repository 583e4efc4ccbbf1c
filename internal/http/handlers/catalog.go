package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quildacademy/quild-backend/internal/http/response"
	"github.com/quildacademy/quild-backend/internal/services"
)

type CatalogHandler struct {
	catalog services.CatalogService
}

func NewCatalogHandler(catalog services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// GET /api/catalog/phases
func (h *CatalogHandler) ListPhases(c *gin.Context) {
	phases, err := h.catalog.ListPhases(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"phases": phases})
}

// GET /api/catalog/weeks?phaseId=
func (h *CatalogHandler) ListWeeks(c *gin.Context) {
	phaseID, err := optionalID(c, "phaseId")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	weeks, err := h.catalog.ListWeeks(c.Request.Context(), phaseID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"weeks": weeks})
}

// GET /api/catalog/lessons?weekId=|phaseId=
func (h *CatalogHandler) ListLessons(c *gin.Context) {
	weekID, err := optionalID(c, "weekId")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	phaseID, err := optionalID(c, "phaseId")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	lessons, err := h.catalog.ListLessons(c.Request.Context(), weekID, phaseID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lessons": lessons})
}
