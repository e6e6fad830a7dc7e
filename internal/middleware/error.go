package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pageza/recipefinder/backend/internal/apperr"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// RespondError logs err with its cause and writes the static message for its
// kind. Causes never reach the client.
func RespondError(c *gin.Context, log *zerolog.Logger, err error) {
	status := apperr.Status(err)
	ev := log.Warn()
	if status >= http.StatusInternalServerError {
		ev = log.Error()
	}
	ev.Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Int("status", status).
		Str("kind", apperr.GetKind(err).String()).
		Msg("request failed")

	resp := ErrorResponse{Error: apperr.PublicMessage(err)}
	var e *apperr.Error
	if status < http.StatusInternalServerError && errors.As(err, &e) {
		resp.Details = e.Details
	}
	c.AbortWithStatusJSON(status, resp)
}

// ErrorHandler recovers panics into a static 500 JSON response.
func ErrorHandler(log *zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error().
			Interface("panic", recovered).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("panic recovered")
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: apperr.MsgInternal})
	})
}
