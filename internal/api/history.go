package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pageza/recipefinder/backend/internal/history"
	"github.com/pageza/recipefinder/backend/internal/middleware"
	"github.com/pageza/recipefinder/backend/internal/service"
)

// HistoryHandler serves the dashboard's search history.
type HistoryHandler struct {
	history service.IHistoryService
	log     *zerolog.Logger
}

// NewHistoryHandler creates a new HistoryHandler
func NewHistoryHandler(history service.IHistoryService, log *zerolog.Logger) *HistoryHandler {
	return &HistoryHandler{history: history, log: log}
}

// RegisterRoutes registers the history routes; router must require auth.
func (h *HistoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	hist := router.Group("/search-history")
	{
		hist.GET("", h.List)
		hist.GET("/:id/export", h.Export)
		hist.POST("/:id/replay", h.Replay)
	}
}

// List returns the caller's entries, filtered by the q date fragment, as a
// bare JSON array.
func (h *HistoryHandler) List(c *gin.Context) {
	userID, ok := requireUser(c, h.log)
	if !ok {
		return
	}

	entries, err := h.history.List(c.Request.Context(), userID, c.Query("userId"), c.Query("q"))
	if err != nil {
		middleware.RespondError(c, h.log, err)
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	c.JSON(http.StatusOK, entries)
}

// Export downloads one entry's search data.
func (h *HistoryHandler) Export(c *gin.Context) {
	userID, ok := requireUser(c, h.log)
	if !ok {
		return
	}

	data, filename, err := h.history.Export(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		middleware.RespondError(c, h.log, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/json", data)
}

// Replay puts an entry's results back in front of the session.
func (h *HistoryHandler) Replay(c *gin.Context) {
	userID, ok := requireUser(c, h.log)
	if !ok {
		return
	}

	n, err := h.history.Replay(c.Request.Context(), userID, c.Param("id"), middleware.SessionID(c))
	if err != nil {
		middleware.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, SubmitResponse{Redirect: RecommendationsPath, TotalResults: n})
}
