package utils

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseJWT(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	token, exp, err := GenerateJWT("alice", "secret", now, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, now.Add(30*time.Minute), exp)

	claims, err := ParseJWT(token, "secret", now.Add(29*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
}

func TestParseJWTRejects(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	token, _, err := GenerateJWT("alice", "secret", now, 30*time.Minute)
	require.NoError(t, err)

	_, err = ParseJWT(token, "secret", now.Add(31*time.Minute))
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = ParseJWT(token, "other-secret", now)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	_, err = ParseJWT("not-a-token", "secret", now)
	assert.ErrorIs(t, err, jwt.ErrTokenMalformed)

	noSub := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))})
	signed, err := noSub.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = ParseJWT(signed, "secret", now)
	assert.ErrorIs(t, err, ErrMissingSubject)

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "alice"})
	signed, err = noExp.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = ParseJWT(signed, "secret", now)
	assert.Error(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "alice", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))})
	signed, err = none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseJWT(signed, "secret", now)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.True(t, CheckPassword(hash, "secret1"))
	assert.False(t, CheckPassword(hash, "secret2"))
	assert.False(t, CheckPassword("not-a-hash", "secret1"))
}

func TestCacheHelpersWithoutRedis(t *testing.T) {
	ctx := context.Background()
	var dest map[string]int
	found, err := GetCache(ctx, nil, "k", &dest)
	assert.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, SetCache(ctx, nil, "k", map[string]int{"a": 1}, time.Minute))
	assert.NoError(t, DeleteCache(ctx, nil, "k"))
}
