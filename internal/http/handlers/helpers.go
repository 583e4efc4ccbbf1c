package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainagg "github.com/quildacademy/quild-backend/internal/domain/aggregates"
	"github.com/quildacademy/quild-backend/internal/platform/ctxutil"
)

func parseID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, domainagg.Validation("http.parse", "invalid "+field)
	}
	return id, nil
}

// optionalID parses a query parameter that may be absent.
func optionalID(c *gin.Context, key string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	id, err := parseID(raw, key)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func currentUserID(c *gin.Context) (uuid.UUID, error) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, domainagg.NewError(domainagg.CodeUnauthenticated, "http.user", "not signed in", nil)
	}
	return rd.UserID, nil
}
