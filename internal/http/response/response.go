package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/quildacademy/quild-backend/internal/domain/aggregates"
)

type ErrorBody struct {
	Error string `json:"error"`
}

// StatusFor maps an error code to an HTTP status.
func StatusFor(code domainagg.ErrorCode) int {
	switch code {
	case domainagg.CodeValidation:
		return http.StatusBadRequest
	case domainagg.CodeUnauthenticated:
		return http.StatusUnauthorized
	case domainagg.CodeNotFound:
		return http.StatusNotFound
	case domainagg.CodeConflict, domainagg.CodeRetryable:
		return http.StatusConflict
	case domainagg.CodePreconditionFailed, domainagg.CodeInvariantViolation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func RespondError(c *gin.Context, status int, msg string) {
	c.JSON(status, ErrorBody{Error: msg})
}

// RespondErr writes err as {error}. Internal failures are masked and the
// cause is attached to the gin context for the request logger.
func RespondErr(c *gin.Context, err error) {
	status := StatusFor(domainagg.CodeOf(err))
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		RespondError(c, status, "internal server error")
		return
	}
	RespondError(c, status, domainagg.MessageOf(err))
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
