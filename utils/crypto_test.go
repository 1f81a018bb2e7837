package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)

	assert.True(t, VerifyPassword("s3cret!", hash))
	assert.False(t, VerifyPassword("wrong", hash))
	assert.False(t, VerifyPassword("s3cret!", ""))
}

func TestGenerateAndParseToken(t *testing.T) {
	secret := []byte("test-secret")

	token, expires, err := GenerateToken("admin", secret, time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := ParseToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "admin", claims.Subject)

	_, err = ParseToken(token, []byte("other-secret"))
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseToken("not-a-token", secret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsExpiredAndForeignTokens(t *testing.T) {
	secret := []byte("test-secret")

	expired, _, err := GenerateToken("admin", secret, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(expired, secret)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Токен без роли администратора
	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": "user",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	signed, err := foreign.SignedString(secret)
	require.NoError(t, err)
	_, err = ParseToken(signed, secret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
