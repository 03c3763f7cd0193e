package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"stackit/internal/forum"
)

// writeError maps the forum error kinds onto HTTP statuses. Remote store
// failures surface as a generic 502; the detail is already logged.
func (s *Server) writeError(c *gin.Context, err error) {
	var validationErr *forum.ValidationError
	var notFoundErr *forum.NotFoundError
	var remoteErr *forum.RemoteError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.Is(err, forum.ErrAuthenticationRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	case errors.Is(err, forum.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "operation not permitted"})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
	case errors.As(err, &remoteErr):
		s.log.Error().Err(err).Msg("remote store failure")
		c.JSON(http.StatusBadGateway, gin.H{"error": "remote operation failed"})
	default:
		s.log.Error().Err(err).Msg("unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
