package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuthTokenClaims(t *testing.T) {
	tok, err := NewAuthToken("test-secret", 5, "ada@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC().Add(24*time.Hour), tok.Exp, time.Minute)

	parsed, err := jwt.Parse(tok.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, float64(5), claims["id"])
	assert.Equal(t, "ada@example.com", claims["email"])
}

func TestNewAuthTokenWrongSecretRejected(t *testing.T) {
	tok, err := NewAuthToken("test-secret", 5, "ada@example.com")
	require.NoError(t, err)

	_, err = jwt.Parse(tok.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("other-secret"), nil
	})
	assert.Error(t, err)
}
