package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenGenerator(t *testing.T) {
	tg := NewTokenGenerator("test-secret-key", time.Hour, 7*24*time.Hour)

	assert.NotNil(t, tg)
	assert.Equal(t, "test-secret-key", tg.secret)
	assert.Equal(t, time.Hour, tg.accessTokenExpiry)
	assert.Equal(t, 7*24*time.Hour, tg.refreshTokenExpiry)
}

func TestTokenGenerator_GenerateTokens(t *testing.T) {
	tg := NewTokenGenerator("b8a3c2267dc85f855dea9b46b452bf20", time.Hour, 7*24*time.Hour)

	t.Run("round trip", func(t *testing.T) {
		accessToken, refreshToken, err := tg.GenerateTokens(123, 2)
		require.NoError(t, err)
		assert.NotEmpty(t, accessToken)
		assert.NotEmpty(t, refreshToken)
		assert.NotEqual(t, accessToken, refreshToken)

		userID, role, err := tg.ValidateAccessToken(accessToken)
		require.NoError(t, err)
		assert.Equal(t, 123, userID)
		assert.Equal(t, 2, role)

		assert.NoError(t, tg.ValidateRefreshToken(refreshToken))
	})

	t.Run("token format", func(t *testing.T) {
		accessToken, refreshToken, err := tg.GenerateTokens(1, 1)
		require.NoError(t, err)

		// JWT format: header.payload.signature
		assert.Len(t, strings.Split(accessToken, "."), 3)
		assert.Len(t, strings.Split(refreshToken, "."), 3)
	})

	t.Run("refresh tokens unique within same second", func(t *testing.T) {
		_, refresh1, err := tg.GenerateTokens(456, 1)
		require.NoError(t, err)
		_, refresh2, err := tg.GenerateTokens(456, 1)
		require.NoError(t, err)

		assert.NotEqual(t, refresh1, refresh2)
	})
}

func TestTokenGenerator_ValidateAccessToken(t *testing.T) {
	tg := NewTokenGenerator("b8a3c2267dc85f855dea9b46b452bf20", time.Hour, 7*24*time.Hour)

	t.Run("rejects refresh token", func(t *testing.T) {
		_, refreshToken, err := tg.GenerateTokens(1, 1)
		require.NoError(t, err)

		_, _, err = tg.ValidateAccessToken(refreshToken)
		assert.Error(t, err)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, _, err := tg.ValidateAccessToken("not-a-token")
		assert.Error(t, err)
	})

	t.Run("rejects token signed with another secret", func(t *testing.T) {
		other := NewTokenGenerator("completely-different-secret", time.Hour, 7*24*time.Hour)
		accessToken, _, err := other.GenerateTokens(1, 1)
		require.NoError(t, err)

		_, _, err = tg.ValidateAccessToken(accessToken)
		assert.Error(t, err)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		expired := NewTokenGenerator("b8a3c2267dc85f855dea9b46b452bf20", -time.Minute, 7*24*time.Hour)
		accessToken, _, err := expired.GenerateTokens(1, 1)
		require.NoError(t, err)

		_, _, err = tg.ValidateAccessToken(accessToken)
		assert.Error(t, err)
	})
}

func TestTokenGenerator_ValidateRefreshToken(t *testing.T) {
	tg := NewTokenGenerator("b8a3c2267dc85f855dea9b46b452bf20", time.Hour, 7*24*time.Hour)

	t.Run("rejects access token", func(t *testing.T) {
		accessToken, _, err := tg.GenerateTokens(1, 1)
		require.NoError(t, err)

		assert.Error(t, tg.ValidateRefreshToken(accessToken))
	})

	t.Run("rejects expired token", func(t *testing.T) {
		expired := NewTokenGenerator("b8a3c2267dc85f855dea9b46b452bf20", time.Hour, -time.Minute)
		_, refreshToken, err := expired.GenerateTokens(1, 1)
		require.NoError(t, err)

		assert.Error(t, tg.ValidateRefreshToken(refreshToken))
	})
}
