package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// SessionCookieName holds the browser session id that scopes the result cache.
	SessionCookieName = "rf_session"
	// ContextSessionKey is the gin context key for the session id.
	ContextSessionKey = "session_id"
)

// Session makes sure every request carries a session id. A new id is issued
// as a cookie without Max-Age, so it ends when the browser closes.
func Session(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(SessionCookieName)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.New().String()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookieName, id, 0, "/", "", secure, true)
		}
		c.Set(ContextSessionKey, id)
		c.Next()
	}
}

// SessionID returns the session id set by Session.
func SessionID(c *gin.Context) string {
	return c.GetString(ContextSessionKey)
}
