package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/pageza/recipefinder/backend/internal/apperr"
)

func TestIPRateLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(0.001, 2, &nopLog)
	router := gin.New()
	router.POST("/search", limiter.RateLimitMiddleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/search", nil)
		req.RemoteAddr = ip + ":40000"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, send("10.0.0.1").Code)

	limited := send("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "2", limited.Header().Get("X-RateLimit-Limit"))
	assert.NotEmpty(t, limited.Header().Get("Retry-After"))
	assert.Equal(t, apperr.MsgRateLimited, decodeError(t, limited).Error)

	assert.Equal(t, http.StatusOK, send("10.0.0.2").Code, "buckets are per IP")
}
