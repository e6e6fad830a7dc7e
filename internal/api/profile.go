package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pageza/recipefinder/backend/internal/apperr"
	"github.com/pageza/recipefinder/backend/internal/middleware"
	"github.com/pageza/recipefinder/backend/internal/service"
	"github.com/pageza/recipefinder/backend/internal/types"
)

type ProfileHandler struct {
	profileService service.IProfileService
	log            *zerolog.Logger
}

func NewProfileHandler(profileService service.IProfileService, log *zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		log:            log,
	}
}

// RegisterRoutes registers the profile routes; router must require auth.
func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup) {
	profile := router.Group("/profile")
	{
		profile.GET("", h.GetProfile)
		profile.PUT("", h.UpdateProfile)
	}
}

// GetProfile syncs the local profile with the token and returns it.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	claims := middleware.Claims(c)
	if claims == nil {
		middleware.RespondError(c, h.log, apperr.Unauthorized("user not authenticated"))
		return
	}

	profile, err := h.profileService.SyncFromToken(c.Request.Context(), claims)
	if err != nil {
		middleware.RespondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := requireUser(c, h.log)
	if !ok {
		return
	}

	var req types.UpdateProfileRequest
	if !bindJSON(c, h.log, &req) {
		return
	}

	profile, err := h.profileService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		middleware.RespondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
