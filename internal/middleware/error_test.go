package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipefinder/backend/internal/apperr"
)

var nopLog = zerolog.Nop()

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestErrorHandlerRecoversPanic(t *testing.T) {
	router := gin.New()
	router.Use(ErrorHandler(&nopLog))
	router.GET("/", func(c *gin.Context) { panic("nil map write") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperr.MsgInternal, decodeError(t, w).Error)
}

func TestRespondErrorHidesCause(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"transport", apperr.Transport(errors.New("dial tcp 10.0.0.3:5000: connection refused")), http.StatusBadGateway, apperr.MsgTransport},
		{"busy", apperr.Busy(), http.StatusConflict, apperr.MsgBusy},
		{"plain error", errors.New("pq: password authentication failed"), http.StatusInternalServerError, apperr.MsgInternal},
		{"validation", apperr.Validation("Please enter a search term."), http.StatusBadRequest, "Please enter a search term."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/", func(c *gin.Context) { RespondError(c, &nopLog, tc.err) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.msg, decodeError(t, w).Error)
			assert.NotContains(t, w.Body.String(), "dial tcp")
			assert.NotContains(t, w.Body.String(), "pq:")
		})
	}
}
