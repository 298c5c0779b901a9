package backend

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nospi-app/nospi/internal/common"
)

func signClaims(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-key"))
	require.NoError(t, err)
	return s
}

func TestParseAccessToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signClaims(t, accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", ExpiresAt: jwt.NewNumericDate(exp)},
		Phone:            "+34600111222",
		Role:             "authenticated",
	})

	claims, err := parseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "+34600111222", claims.Phone)
	assert.True(t, exp.Equal(claims.expiresAt()))
}

func TestParseAccessToken_NoExpiry(t *testing.T) {
	token := signClaims(t, accessClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}})

	claims, err := parseAccessToken(token)
	require.NoError(t, err)
	assert.True(t, claims.expiresAt().IsZero())
}

func TestParseAccessToken_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-jwt"},
		{"empty", ""},
		{"missing subject", signClaims(t, accessClaims{Email: "a@b.c"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseAccessToken(tt.token)
			require.ErrorIs(t, err, common.ErrInvalidToken)
		})
	}
}

func TestParseAccessToken_ExpiredStillDecodes(t *testing.T) {
	token := signClaims(t, accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))},
	})

	claims, err := parseAccessToken(token)
	require.NoError(t, err)
	assert.True(t, claims.expiresAt().Before(time.Now()))
}
