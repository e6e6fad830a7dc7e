package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pageza/recipefinder/backend/internal/apperr"
	"github.com/pageza/recipefinder/backend/internal/history"
	"github.com/pageza/recipefinder/backend/internal/mocks"
	"github.com/pageza/recipefinder/backend/internal/types"
)

func newHistoryRouter(userID string, svc *mocks.MockHistoryService) *gin.Engine {
	router := newTestRouter(userID)
	NewHistoryHandler(svc, &testLog).RegisterRoutes(router.Group("/api"))
	return router
}

func TestListHistory(t *testing.T) {
	entry := history.Entry{
		ID:           primitive.NewObjectID(),
		UserID:       testUser,
		SearchData:   history.SearchData{Request: types.SearchRequest{Text: &types.TextQuery{RawText: "tacos"}}},
		SearchDate:   time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC),
		TotalResults: 0,
	}
	svc := new(mocks.MockHistoryService)
	svc.On("List", mock.Anything, testUser, testUser, "3/5/2024").Return([]history.Entry{entry}, nil).Once()

	w := doJSON(t, newHistoryRouter(testUser, svc), http.MethodGet, "/api/search-history?userId="+testUser+"&q=3/5/2024", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var got []history.Entry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, entry.ID, got[0].ID)
	assert.Equal(t, "tacos", got[0].SearchData.Request.Text.RawText)
	svc.AssertExpectations(t)
}

func TestListHistoryEmpty(t *testing.T) {
	svc := new(mocks.MockHistoryService)
	svc.On("List", mock.Anything, testUser, "", "").Return(nil, nil)

	w := doJSON(t, newHistoryRouter(testUser, svc), http.MethodGet, "/api/search-history", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestListHistoryErrors(t *testing.T) {
	tests := []struct {
		name   string
		user   string
		err    error
		status int
	}{
		{"anonymous", "", nil, http.StatusUnauthorized},
		{"other user", testUser, apperr.Forbidden("cannot read another user's search history"), http.StatusForbidden},
		{"store down", testUser, apperr.Internal(errors.New("server selection timeout")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mocks.MockHistoryService)
			svc.On("List", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

			w := doJSON(t, newHistoryRouter(tt.user, svc), http.MethodGet, "/api/search-history?userId=someone-else", nil)

			assert.Equal(t, tt.status, w.Code)
			assert.NotContains(t, w.Body.String(), "server selection")
			if tt.user == "" {
				svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestExportHistory(t *testing.T) {
	svc := new(mocks.MockHistoryService)
	payload := []byte("{\n  \"request\": {}\n}")
	svc.On("Export", mock.Anything, testUser, "65f0c2").Return(payload, "search-data-65f0c2.json", nil)

	w := doJSON(t, newHistoryRouter(testUser, svc), http.MethodGet, "/api/search-history/65f0c2/export", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="search-data-65f0c2.json"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, string(payload), w.Body.String())
}

func TestExportHistoryNotFound(t *testing.T) {
	svc := new(mocks.MockHistoryService)
	svc.On("Export", mock.Anything, testUser, "missing").Return(nil, "", apperr.NotFound("search history entry not found"))

	w := doJSON(t, newHistoryRouter(testUser, svc), http.MethodGet, "/api/search-history/missing/export", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReplayHistory(t *testing.T) {
	svc := new(mocks.MockHistoryService)
	svc.On("Replay", mock.Anything, testUser, "65f0c2", testSession).Return(4, nil).Once()

	w := doJSON(t, newHistoryRouter(testUser, svc), http.MethodPost, "/api/search-history/65f0c2/replay", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"redirect":"/recommendations","totalResults":4}`, w.Body.String())
	svc.AssertExpectations(t)
}
