// Package api holds the HTTP handlers of the recipefinder backend.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pageza/recipefinder/backend/internal/apperr"
	"github.com/pageza/recipefinder/backend/internal/middleware"
)

// RecommendationsPath is where the browser goes after a successful submission.
const RecommendationsPath = "/recommendations"

// SubmitResponse answers every search submission and history replay.
type SubmitResponse struct {
	Redirect     string `json:"redirect"`
	TotalResults int    `json:"totalResults"`
	Warning      string `json:"warning,omitempty"`
}

// HealthCheck returns the health status of the API
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "recipefinder API is running",
		"version": "v1.0.0",
	})
}

// RegisterHealthRoutes registers the liveness endpoints.
func RegisterHealthRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)
	router.GET("/api/health", HealthCheck)
}

func bindJSON(c *gin.Context, log *zerolog.Logger, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		middleware.RespondError(c, log, apperr.Wrap(apperr.KindValidation, "invalid request body", err))
		return false
	}
	return true
}

func requireUser(c *gin.Context, log *zerolog.Logger) (string, bool) {
	userID := middleware.UserID(c)
	if userID == "" {
		middleware.RespondError(c, log, apperr.Unauthorized("user not authenticated"))
		return "", false
	}
	return userID, true
}
