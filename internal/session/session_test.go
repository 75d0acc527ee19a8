package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmerch/storefront/internal/models"
)

func signedToken(t *testing.T, sub, role string, secret []byte) string {
	t.Helper()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return signed
}

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := WithToken(context.Background(), "tok")
	assert.Equal(t, "tok", Token(ctx))
	assert.Empty(t, Token(context.Background()))
}

func TestRequireToken(t *testing.T) {
	t.Parallel()

	_, err := RequireToken(context.Background())
	assert.ErrorIs(t, err, models.ErrNotAuthenticated)

	tok, err := RequireToken(WithToken(context.Background(), "tok"))
	require.NoError(t, err)
	assert.Equal(t, "tok", tok)
}

func TestClaimsFromToken(t *testing.T) {
	t.Parallel()

	secret := []byte("test-secret")
	signed := signedToken(t, "u1", "admin", secret)

	claims, err := ClaimsFromToken(signed, secret)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "admin", claims.Role)

	_, err = ClaimsFromToken(signed, []byte("wrong-secret"))
	assert.Error(t, err)
}

func TestAdvisoryExtraction(t *testing.T) {
	t.Parallel()

	signed := signedToken(t, "u1", "admin", []byte("any-secret"))
	assert.Equal(t, "u1", SubjectFromToken(signed))
	assert.Equal(t, models.RoleAdmin, RoleFromToken(signed))

	assert.Equal(t, models.RoleGuest, RoleFromToken(""))
	assert.Equal(t, models.RoleGuest, RoleFromToken("garbage"))
	assert.Empty(t, SubjectFromToken("garbage"))

	unknownRole := signedToken(t, "u1", "superuser", []byte("any-secret"))
	assert.Equal(t, models.RoleGuest, RoleFromToken(unknownRole))
}
