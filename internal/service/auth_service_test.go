package service

import (
	"testing"
	"time"

	"gw-transaction-batch/internal/custom_err"
	"gw-transaction-batch/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_GenerateAndValidate(t *testing.T) {
	svc := NewAuthService("secret", time.Hour)

	token, err := svc.GenerateToken("ops-user")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops-user", claims.Subject)
	assert.Equal(t, RoleOperator, claims.Role)
}

func TestAuthService_GenerateToken_EmptySubject(t *testing.T) {
	svc := NewAuthService("secret", time.Hour)

	_, err := svc.GenerateToken("")
	assert.Error(t, err)
}

func TestAuthService_ValidateToken_Expired(t *testing.T) {
	svc := NewAuthService("secret", time.Hour)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := svc.GenerateToken("ops-user")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, custom_err.ErrTokenExpired)
}

func TestAuthService_ValidateToken_NotActive(t *testing.T) {
	svc := NewAuthService("secret", 3*time.Hour)
	svc.now = func() time.Time { return time.Now().Add(time.Hour) }

	token, err := svc.GenerateToken("ops-user")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, custom_err.ErrTokenNotActive)
}

func TestAuthService_ValidateToken_WrongSecret(t *testing.T) {
	token, err := NewAuthService("secret", time.Hour).GenerateToken("ops-user")
	require.NoError(t, err)

	_, err = NewAuthService("other", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, custom_err.ErrInvalidToken)
}

func TestAuthService_ValidateToken_WrongRole(t *testing.T) {
	claims := models.OperatorClaims{
		Role: "viewer",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ops-user",
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewAuthService("secret", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, custom_err.ErrInvalidToken)
}

func TestAuthService_ValidateToken_Garbage(t *testing.T) {
	_, err := NewAuthService("secret", time.Hour).ValidateToken("not-a-token")
	assert.ErrorIs(t, err, custom_err.ErrInvalidToken)
}
