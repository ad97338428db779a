package token

import (
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-only-secret"))
	require.NoError(t, err)
	return raw
}

func TestInspect(t *testing.T) {
	iat := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	raw := sign(t, jwt.MapClaims{
		"sub": "user@example.com",
		"id":  42,
		"iss": "blog",
		"iat": iat.Unix(),
		"exp": iat.Add(2 * time.Hour).Unix(),
	})

	info, err := Inspect(raw)

	require.NoError(t, err)
	assert.Equal(t, "user@example.com", info.Subject)
	assert.Equal(t, "42", info.UserID)
	assert.Equal(t, "blog", info.Issuer)
	assert.True(t, iat.Equal(info.IssuedAt))
	assert.True(t, iat.Add(2*time.Hour).Equal(info.ExpiresAt))
}

func TestInspect_MissingClaims(t *testing.T) {
	info, err := Inspect(sign(t, jwt.MapClaims{"sub": "anon"}))

	require.NoError(t, err)
	assert.Equal(t, "anon", info.Subject)
	assert.Empty(t, info.UserID)
	assert.True(t, info.ExpiresAt.IsZero())
	assert.False(t, info.Expired(time.Now()))
}

func TestInspect_Invalid(t *testing.T) {
	_, err := Inspect("")
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Inspect("not-a-jwt")
	assert.Error(t, err)
}

func TestExpiredAndRemaining(t *testing.T) {
	exp := time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC)
	info := Info{ExpiresAt: exp}

	assert.False(t, info.Expired(exp.Add(-time.Minute)))
	assert.Equal(t, time.Minute, info.Remaining(exp.Add(-time.Minute)))
	assert.True(t, info.Expired(exp))
	assert.Equal(t, time.Duration(0), info.Remaining(exp.Add(time.Hour)))
}
