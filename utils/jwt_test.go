package utils

import (
	"testing"
	"time"

	"hotel-booking-api/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(42, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	id, err := ExtractUserIDFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestExpiredTokenRejected(t *testing.T) {
	token, err := GenerateToken(42, -time.Minute)
	require.NoError(t, err)

	_, err = ExtractUserIDFromToken(token)
	assert.Error(t, err)
}

func TestGarbageTokenRejected(t *testing.T) {
	_, err := ExtractUserIDFromToken("not.a.token")
	assert.Error(t, err)

	_, err = ExtractUserIDFromToken("")
	assert.Error(t, err)
}

func TestTokenSignedWithConfiguredSecret(t *testing.T) {
	original := config.AppConfig.JWTSecret
	t.Cleanup(func() { config.AppConfig.JWTSecret = original })

	config.AppConfig.JWTSecret = "first-secret"
	token, err := GenerateToken(42, time.Hour)
	require.NoError(t, err)

	id, err := ExtractUserIDFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	// Rotating the secret invalidates previously issued tokens.
	config.AppConfig.JWTSecret = "second-secret"
	_, err = ExtractUserIDFromToken(token)
	assert.Error(t, err)
}

func TestTamperedTokenRejected(t *testing.T) {
	token, err := GenerateToken(42, time.Hour)
	require.NoError(t, err)

	_, err = ExtractUserIDFromToken(token + "x")
	assert.Error(t, err)
}
