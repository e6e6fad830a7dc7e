package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pageza/recipefinder/backend/internal/middleware"
	"github.com/pageza/recipefinder/backend/internal/query"
	"github.com/pageza/recipefinder/backend/internal/service"
	"github.com/pageza/recipefinder/backend/internal/types"
)

// TextSearchRequest is the body of a free-text submission. Query is the
// field older clients send.
type TextSearchRequest struct {
	Text  string `json:"text"`
	Query string `json:"query"`
}

// SearchHandler accepts the three kinds of submission.
type SearchHandler struct {
	searches      service.ISearchService
	formData      service.IFormDataService
	images        ImageNormalizer
	builder       *query.Builder
	maxImageBytes int64
	log           *zerolog.Logger
}

// NewSearchHandler creates a new SearchHandler. images may be nil, in which
// case uploads are forwarded as received.
func NewSearchHandler(searches service.ISearchService, formData service.IFormDataService, images ImageNormalizer, maxImageBytes int64, log *zerolog.Logger) *SearchHandler {
	if maxImageBytes <= 0 {
		maxImageBytes = query.DefaultMaxImageBytes
	}
	return &SearchHandler{
		searches:      searches,
		formData:      formData,
		images:        images,
		builder:       query.NewBuilder(maxImageBytes),
		maxImageBytes: maxImageBytes,
		log:           log,
	}
}

// RegisterRoutes registers the submission routes behind the given guards
// (rate limiting and the single-submission guard).
func (h *SearchHandler) RegisterRoutes(router *gin.RouterGroup, guards ...gin.HandlerFunc) {
	search := router.Group("/search")
	search.Use(guards...)
	{
		search.POST("/text", h.SearchText)
		search.POST("/image", h.SearchImage)
		search.POST("/structured", h.SearchStructured)
	}
}

// SearchText handles a free-text submission.
func (h *SearchHandler) SearchText(c *gin.Context) {
	var body TextSearchRequest
	if !bindJSON(c, h.log, &body) {
		return
	}
	raw := body.Text
	if raw == "" {
		raw = body.Query
	}

	req, err := h.builder.BuildText(raw)
	if err != nil {
		middleware.RespondError(c, h.log, err)
		return
	}
	h.submit(c, req)
}

// SearchStructured validates the filter form against the current metadata
// and submits it.
func (h *SearchHandler) SearchStructured(c *gin.Context) {
	var body types.StructuredQuery
	if !bindJSON(c, h.log, &body) {
		return
	}

	meta, err := h.formData.Get(c.Request.Context())
	if err != nil {
		middleware.RespondError(c, h.log, err)
		return
	}

	req, err := h.builder.BuildStructured(meta, body)
	if err != nil {
		middleware.RespondError(c, h.log, err)
		return
	}
	h.submit(c, req)
}

func (h *SearchHandler) submit(c *gin.Context, req types.SearchRequest) {
	outcome, err := h.searches.Submit(c.Request.Context(), middleware.SessionID(c), middleware.UserID(c), req)
	if err != nil {
		middleware.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, SubmitResponse{
		Redirect:     RecommendationsPath,
		TotalResults: outcome.TotalResults,
		Warning:      outcome.Warning,
	})
}
