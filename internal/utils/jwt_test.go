package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestJWTUtil_GenerateToken(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour)
	userID := "6650f0c2a1b2c3d4e5f60718"
	role := "user"

	tokenString, err := jwtUtil.GenerateToken(userID, role)

	assert.NoError(t, err)
	assert.NotEmpty(t, tokenString)

	// Validate the token to ensure it's well-formed and contains correct claims
	claims, err := jwtUtil.ValidateToken(tokenString)
	assert.NoError(t, err)
	assert.NotNil(t, claims)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID, claims.Subject)
	assert.Equal(t, role, claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestJWTUtil_ValidateToken_InvalidToken(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour)

	_, err := jwtUtil.ValidateToken("invalid.token.string")
	assert.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenMalformed)
}

func TestJWTUtil_ValidateToken_ExpiredToken(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", -time.Hour) // Token expires in the past

	tokenString, _ := jwtUtil.GenerateToken("u1", "user")

	_, err := jwtUtil.ValidateToken(tokenString)
	assert.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTUtil_ValidateToken_WrongSecret(t *testing.T) {
	jwtUtil1 := NewJWTUtil("secret1", time.Hour)
	jwtUtil2 := NewJWTUtil("secret2", time.Hour)

	tokenString, _ := jwtUtil1.GenerateToken("u1", "user")

	_, err := jwtUtil2.ValidateToken(tokenString)
	assert.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestJWTUtil_ValidateToken_InvalidSigningMethod(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour)
	// Create a token with a different signing method (e.g., HS384 instead of HS256)
	claims := &JWTClaims{
		UserID: "u1",
		Role:   "user",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS384, claims)
	tokenString, _ := token.SignedString([]byte("secret"))

	_, err := jwtUtil.ValidateToken(tokenString)
	assert.Error(t, err)
}

func TestJWTUtil_ValidateToken_MissingUserID(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour)

	tokenString, _ := jwtUtil.GenerateToken("", "user")

	_, err := jwtUtil.ValidateToken(tokenString)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "missing user id")
}
