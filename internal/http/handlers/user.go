package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainagg "github.com/quildacademy/quild-backend/internal/domain/aggregates"
	"github.com/quildacademy/quild-backend/internal/http/response"
	"github.com/quildacademy/quild-backend/internal/platform/ctxutil"
	"github.com/quildacademy/quild-backend/internal/services"
)

const defaultEnsureRedirect = "/dashboard"

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GET /api/me
func (h *UserHandler) GetMe(c *gin.Context) {
	me, err := h.userService.GetMe(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"me": me})
}

// GET /api/users/ensure?redirect=
func (h *UserHandler) Ensure(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.ExternalID == "" {
		response.RespondErr(c, domainagg.NewError(domainagg.CodeUnauthenticated, "http.ensure_user", "not signed in", nil))
		return
	}
	if _, err := h.userService.EnsureUser(c.Request.Context(), rd.ExternalID); err != nil {
		response.RespondErr(c, err)
		return
	}
	c.Redirect(http.StatusFound, safeRedirect(c.Query("redirect")))
}

// safeRedirect only allows same-site absolute paths.
func safeRedirect(target string) string {
	target = strings.TrimSpace(target)
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, `\`) {
		return defaultEnsureRedirect
	}
	return target
}
