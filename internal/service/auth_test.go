package service_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipefinder/backend/internal/service"
	"github.com/pageza/recipefinder/backend/internal/types"
)

func TestValidateTokenValid(t *testing.T) {
	svc := service.NewTokenService("test-secret")
	token, err := svc.GenerateToken("user-1", "Ada", "ada@example.com", time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "Ada", claims.Name)
	assert.Equal(t, "ada@example.com", claims.Email)
}

func TestValidateTokenInvalid(t *testing.T) {
	svc := service.NewTokenService("test-secret")

	claims, err := svc.ValidateToken("invalid.token")
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	other, err := service.NewTokenService("other-secret").GenerateToken("user-1", "", "", time.Hour)
	require.NoError(t, err)
	_, err = svc.ValidateToken(other)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestValidateTokenExpired(t *testing.T) {
	svc := service.NewTokenService("test-secret")
	token, err := svc.GenerateToken("user-1", "", "", -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, service.ErrTokenExpired)
}

func TestValidateTokenRejectsOtherAlgorithms(t *testing.T) {
	claims := types.TokenClaims{UserID: "user-1"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = service.NewTokenService("test-secret").ValidateToken(token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestValidateTokenRequiresUserID(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, types.TokenClaims{Name: "ghost"}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = service.NewTokenService("test-secret").ValidateToken(token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}
