package testutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken_RoundTrip(t *testing.T) {
	token, err := GenerateToken("user@example.com", time.Minute)
	require.NoError(t, err)

	name, err := UsernameFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", name)
}

func TestUsernameFromToken_Rejects(t *testing.T) {
	expired, err := GenerateToken("user@example.com", -time.Minute)
	require.NoError(t, err)
	_, err = UsernameFromToken(expired)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Username: "x"}).SignedString([]byte("other"))
	require.NoError(t, err)
	_, err = UsernameFromToken(foreign)
	require.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	_, err = UsernameFromToken("not-a-token")
	require.Error(t, err)
}
