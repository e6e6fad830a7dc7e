package types

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims represents the claims issued by the identity provider
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}
