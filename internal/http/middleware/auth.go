package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainagg "github.com/quildacademy/quild-backend/internal/domain/aggregates"
	"github.com/quildacademy/quild-backend/internal/http/response"
	"github.com/quildacademy/quild-backend/internal/platform/ctxutil"
	"github.com/quildacademy/quild-backend/internal/platform/logger"
	"github.com/quildacademy/quild-backend/internal/services"
)

// SessionCookie is the cookie the identity provider's frontend SDK sets.
const SessionCookie = "__session"

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
	userService services.UserService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService, userService services.UserService) *AuthMiddleware {
	middlewareLogger := log.With("Middleware", "AuthMiddleware")
	return &AuthMiddleware{log: middlewareLogger, authService: authService, userService: userService}
}

// RequireAuth verifies the session token and attaches the caller to the
// request context.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorBody{Error: "missing session token"})
			return
		}
		rd, err := am.authService.Authenticate(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorBody{Error: domainagg.MessageOf(err)})
			return
		}
		c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
		c.Next()
	}
}

// EnsureUser guarantees a local user for the caller, falling back to a
// placeholder profile when the identity provider is unreachable. It must run
// after RequireAuth.
func (am *AuthMiddleware) EnsureUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		if rd == nil || rd.ExternalID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorBody{Error: "not signed in"})
			return
		}
		u, err := am.userService.EnsureUserWithFallback(c.Request.Context(), rd.ExternalID)
		if err != nil {
			am.log.Error("ensure user failed", "external_id", rd.ExternalID, "error", err)
			_ = c.Error(err)
			c.AbortWithStatusJSON(response.StatusFor(domainagg.CodeOf(err)), response.ErrorBody{Error: "failed to load user"})
			return
		}
		rd.UserID = u.ID
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return strings.TrimSpace(cookie)
	}
	return ""
}
