package api

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pageza/recipefinder/backend/internal/middleware"
	"github.com/pageza/recipefinder/backend/internal/presenter"
	"github.com/pageza/recipefinder/backend/internal/resultcache"
)

//go:embed templates/recommendations.html
var templateFS embed.FS

var recommendationsTmpl = template.Must(template.ParseFS(templateFS, "templates/recommendations.html"))

// RecommendationsResponse is the JSON rendering of the results page. Details
// are sent with the cards because the cached set is gone after this read.
type RecommendationsResponse struct {
	presenter.View
	Details []presenter.DetailView `json:"details"`
}

// recommendationsPage is the template data. DefaultImage replaces any image
// that fails to load in the browser.
type recommendationsPage struct {
	RecommendationsResponse
	DefaultImage string
}

// RecommendationsHandler renders the session's result set. Each page view
// consumes the set.
type RecommendationsHandler struct {
	cache        resultcache.Store
	defaultImage string
	log          *zerolog.Logger
}

// NewRecommendationsHandler creates a new RecommendationsHandler
func NewRecommendationsHandler(cache resultcache.Store, defaultImage string, log *zerolog.Logger) *RecommendationsHandler {
	if defaultImage == "" {
		defaultImage = presenter.DefaultImage
	}
	return &RecommendationsHandler{cache: cache, defaultImage: defaultImage, log: log}
}

// RegisterRoutes registers the JSON view on api and the HTML page on page.
func (h *RecommendationsHandler) RegisterRoutes(api *gin.RouterGroup, page gin.IRoutes) {
	api.GET("/recommendations", h.GetRecommendations)
	page.GET(RecommendationsPath, h.RecommendationsPage)
}

func (h *RecommendationsHandler) load(c *gin.Context) RecommendationsResponse {
	sessionID := middleware.SessionID(c)
	p := presenter.New(h.cache, sessionID, h.defaultImage)
	view, err := p.Load(c.Request.Context())
	if err != nil {
		h.log.Warn().Err(err).Str("session", sessionID).Msg("showing empty results")
	}
	return RecommendationsResponse{View: view, Details: p.Details()}
}

// GetRecommendations returns the result set as JSON.
func (h *RecommendationsHandler) GetRecommendations(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, h.load(c))
}

// RecommendationsPage renders the result set as HTML.
func (h *RecommendationsHandler) RecommendationsPage(c *gin.Context) {
	page := recommendationsPage{RecommendationsResponse: h.load(c), DefaultImage: h.defaultImage}
	c.Header("Cache-Control", "no-store")
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := recommendationsTmpl.Execute(c.Writer, page); err != nil {
		h.log.Error().Err(err).Msg("failed to render recommendations page")
	}
}
