package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainagg "github.com/quildacademy/quild-backend/internal/domain/aggregates"
	"github.com/quildacademy/quild-backend/internal/http/response"
	"github.com/quildacademy/quild-backend/internal/platform/ctxutil"
	"github.com/quildacademy/quild-backend/internal/services"
)

type LeaderboardHandler struct {
	leaderboard services.LeaderboardService
}

func NewLeaderboardHandler(leaderboard services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboard: leaderboard}
}

// GET /api/leaderboard?limit=
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.RespondErr(c, domainagg.Validation("http.leaderboard", "limit must be an integer"))
			return
		}
		limit = n
	}
	viewer := uuid.Nil
	if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil {
		viewer = rd.UserID
	}
	entries, err := h.leaderboard.Rank(c.Request.Context(), viewer, limit)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}
