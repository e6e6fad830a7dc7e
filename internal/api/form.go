package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pageza/recipefinder/backend/internal/apperr"
	"github.com/pageza/recipefinder/backend/internal/middleware"
	"github.com/pageza/recipefinder/backend/internal/query"
	"github.com/pageza/recipefinder/backend/internal/service"
)

// FormOptionsRequest is the browser's current filter form. The response is
// the form after applying the selections in cascade order, with the option
// sets and ranges that follow from them.
type FormOptionsRequest struct {
	Category           string   `json:"category"`
	DietaryPreferences []string `json:"dietaryPreferences"`
	Ingredients        []string `json:"ingredients"`
	Calories           *int     `json:"calories"`
	Time               *int     `json:"time"`
}

// FormOptionsResponse is the evaluated form. Submittable tells the browser
// whether the structured search would accept it; Problem says why not.
type FormOptionsResponse struct {
	*query.Form
	Submittable bool   `json:"submittable"`
	Problem     string `json:"problem,omitempty"`
}

// FormHandler serves the structured search form.
type FormHandler struct {
	formData service.IFormDataService
	builder  *query.Builder
	log      *zerolog.Logger
}

// NewFormHandler creates a new FormHandler
func NewFormHandler(formData service.IFormDataService, log *zerolog.Logger) *FormHandler {
	return &FormHandler{formData: formData, builder: query.NewBuilder(0), log: log}
}

// RegisterRoutes registers the form routes
func (h *FormHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/form-data", h.GetFormData)
	router.POST("/form/options", h.EvaluateForm)
}

// GetFormData returns the option catalogue.
func (h *FormHandler) GetFormData(c *gin.Context) {
	meta, err := h.formData.Get(c.Request.Context())
	if err != nil {
		middleware.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, meta)
}

// EvaluateForm replays the selections onto a fresh form. Ingredients not
// offered for the chosen preferences are dropped.
func (h *FormHandler) EvaluateForm(c *gin.Context) {
	var req FormOptionsRequest
	if !bindJSON(c, h.log, &req) {
		return
	}

	meta, err := h.formData.Get(c.Request.Context())
	if err != nil {
		middleware.RespondError(c, h.log, err)
		return
	}

	form := query.NewForm(meta)
	if req.Category != "" {
		form.SelectCategory(req.Category)
		form.SelectPreferences(req.DietaryPreferences...)
		for _, ing := range req.Ingredients {
			form.ToggleIngredient(ing)
		}
	}
	if req.Calories != nil {
		form.SetCalories(*req.Calories)
	}
	if req.Time != nil {
		form.SetTime(*req.Time)
	}

	resp := FormOptionsResponse{Form: form, Submittable: true}
	if _, err := form.Build(h.builder); err != nil {
		resp.Submittable = false
		resp.Problem = apperr.PublicMessage(err)
	}
	c.JSON(http.StatusOK, resp)
}
