package server

import (
	"errors"
	"log/slog"
	"net/http"

	"bate-papo/domain"
	chaterr "bate-papo/errors"

	"github.com/gin-gonic/gin"
)

const internalError = "internal error"

// errorStatuses is checked in order, the first sentinel matching wins.
var errorStatuses = []struct {
	err    error
	status int
}{
	{chaterr.ErrValidation, http.StatusUnprocessableEntity},
	{chaterr.ErrUnknownAuthor, http.StatusUnprocessableEntity},
	{chaterr.ErrNameTaken, http.StatusConflict},
	{chaterr.ErrUnknownParticipant, http.StatusNotFound},
	{chaterr.ErrNotFound, http.StatusNotFound},
	{chaterr.ErrForbidden, http.StatusUnauthorized},
}

// writeError maps a core error to its status code and body.
// Anything unknown, store failures included, is logged and answered with an opaque 500.
func writeError(c *gin.Context, log *slog.Logger, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, errorResponse{
			Error:   chaterr.ErrValidation.Error(),
			Details: validationErr.Fields,
		})
		return
	}
	if errors.Is(err, chaterr.ErrInvalidName) {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, errorResponse{
			Error:   chaterr.ErrInvalidName.Error(),
			Details: []domain.FieldError{{Field: "name", Rule: "required"}},
		})
		return
	}
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			c.AbortWithStatusJSON(e.status, errorResponse{Error: e.err.Error()})
			return
		}
	}

	log.Error("Request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: internalError})
}

func badRequestBody(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, errorResponse{
		Error:   chaterr.ErrValidation.Error(),
		Details: []domain.FieldError{{Field: "body", Rule: "json"}},
	})
}
