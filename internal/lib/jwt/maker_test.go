package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaker_RoundTrip(t *testing.T) {
	maker := NewJWTMaker("test-secret", time.Hour)

	token, err := maker.GenerateToken("11111111-2222-3333-4444-555555555555", "ana@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := maker.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", claims.UserUID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.NotEmpty(t, claims.ID, "каждый токен несёт уникальный jti")
	assert.True(t, claims.ExpiresAt.After(time.Now()))

	// Два токена для одного пользователя различимы по jti.
	token2, err := maker.GenerateToken("11111111-2222-3333-4444-555555555555", "ana@example.com")
	require.NoError(t, err)
	claims2, err := maker.ParseToken(token2)
	require.NoError(t, err)
	assert.NotEqual(t, claims.ID, claims2.ID)
}

func TestMaker_RejectsForeignSignature(t *testing.T) {
	token, err := NewJWTMaker("secret-a", time.Hour).GenerateToken("uid", "ana@example.com")
	require.NoError(t, err)

	_, err = NewJWTMaker("secret-b", time.Hour).ParseToken(token)
	assert.Error(t, err)
}

func TestMaker_RejectsExpiredToken(t *testing.T) {
	token, err := NewJWTMaker("test-secret", -time.Minute).GenerateToken("uid", "ana@example.com")
	require.NoError(t, err)

	_, err = NewJWTMaker("test-secret", time.Hour).ParseToken(token)
	assert.Error(t, err)
}
