package token_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-task-client/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

func TestInspect(t *testing.T) {
	issued := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	expires := issued.Add(15 * time.Minute)

	raw := signedToken(t, jwt.MapClaims{
		"sub":  "user-1",
		"role": "admin",
		"iat":  issued.Unix(),
		"exp":  expires.Unix(),
	})

	claims, err := token.Inspect(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
	assert.True(t, claims.IssuedAt.Equal(issued))
	assert.True(t, claims.ExpiresAt.Equal(expires))
}

func TestInspectOpaqueToken(t *testing.T) {
	_, err := token.Inspect("not-a-jwt")
	require.Error(t, err)
}

func TestExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{
			name: "live token",
			raw:  signedToken(t, jwt.MapClaims{"exp": now.Add(time.Minute).Unix()}),
			want: false,
		},
		{
			name: "expired token",
			raw:  signedToken(t, jwt.MapClaims{"exp": now.Add(-time.Minute).Unix()}),
			want: true,
		},
		{
			name: "no exp claim",
			raw:  signedToken(t, jwt.MapClaims{"sub": "user-1"}),
			want: false,
		},
		{
			name: "unparseable token",
			raw:  "garbage",
			want: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, token.Expired(tc.raw, now))
		})
	}
}
