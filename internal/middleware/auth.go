package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pageza/recipefinder/backend/internal/apperr"
	"github.com/pageza/recipefinder/backend/internal/types"
)

// Context keys set by the auth middleware.
const (
	ContextUserIDKey = "user_id"
	ContextClaimsKey = "claims"
)

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(token string) (*types.TokenClaims, error)
}

// AuthMiddleware creates a middleware that validates JWT tokens
func AuthMiddleware(validator TokenValidator, log *zerolog.Logger) gin.HandlerFunc {
	return authenticate(validator, log, true)
}

// OptionalAuth identifies the user when a bearer token is present and lets
// anonymous requests through. A token that is present but invalid is rejected.
func OptionalAuth(validator TokenValidator, log *zerolog.Logger) gin.HandlerFunc {
	return authenticate(validator, log, false)
}

func authenticate(validator TokenValidator, log *zerolog.Logger, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			if required {
				RespondError(c, log, apperr.Unauthorized("missing authorization header"))
				return
			}
			c.Next()
			return
		}

		token, ok := bearerToken(authHeader)
		if !ok {
			RespondError(c, log, apperr.Unauthorized("invalid authorization header format"))
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			RespondError(c, log, apperr.Wrap(apperr.KindUnauthorized, "invalid or expired token", err))
			return
		}

		// Store user info in context
		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextClaimsKey, claims)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// UserID returns the authenticated user's id, or "" for anonymous requests.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserIDKey)
}

// Claims returns the validated token claims, or nil.
func Claims(c *gin.Context) *types.TokenClaims {
	v, ok := c.Get(ContextClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*types.TokenClaims)
	return claims
}
