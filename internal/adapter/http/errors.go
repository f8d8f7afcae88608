package http

import (
	"errors"
	"net/http"

	"github.com/Pezu/servio/internal/adapter/logger"
	"github.com/Pezu/servio/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrInvalidState):
		return http.StatusConflict, "invalid_state"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "validation_failed"
	case errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusBadRequest, "invalid_status"
	}
	return http.StatusInternalServerError, "internal_error"
}

// respondError writes the mapped status. Internal errors are logged and their text is not exposed.
func respondError(c *gin.Context, lgr logger.Logger, err error) {
	status, code := statusOf(err)
	if status == http.StatusInternalServerError {
		lgr.Error("request_failed", "Request failed", logger.RequestID(c.Request.Context()), map[string]interface{}{
			"path": c.Request.URL.Path,
		}, err)
		c.JSON(status, gin.H{"error": code})
		return
	}
	c.JSON(status, gin.H{"error": code, "msg": err.Error()})
}

// pathUUID parses a path parameter, writing a 400 when it is not a UUID.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id", "msg": name + " must be a UUID"})
		return uuid.Nil, false
	}
	return id, true
}
