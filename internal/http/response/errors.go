package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/courtbridge-backend/internal/domain"
)

// RespondDomainError maps service-layer error classes onto HTTP statuses.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, types.ErrInvalidArgument):
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
	case errors.Is(err, types.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, types.ErrSessionClosed):
		RespondError(c, http.StatusConflict, "session_closed", err)
	case errors.Is(err, types.ErrDependencyUnavailable):
		RespondError(c, http.StatusServiceUnavailable, "dependency_unavailable", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal_error", err)
	}
}
