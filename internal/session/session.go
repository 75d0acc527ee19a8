// Package session carries the caller's identity through a request.
// The core never mints tokens; it only forwards the bearer token it
// was handed and, for advisory UX checks, reads the claims inside it.
// Authorization proper always happens on the backend.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/openmerch/storefront/internal/models"
)

type tokenKey struct{}

// WithToken attaches the caller's bearer token to ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// Token returns the bearer token from ctx, or "" when the caller is
// anonymous.
func Token(ctx context.Context) string {
	if v, ok := ctx.Value(tokenKey{}).(string); ok {
		return v
	}
	return ""
}

// RequireToken is the client-side authentication gate for mutations.
func RequireToken(ctx context.Context) (string, error) {
	tok := Token(ctx)
	if tok == "" {
		return "", models.ErrNotAuthenticated
	}
	return tok, nil
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// ClaimsFromToken parses and verifies an HS256 bearer token.
func ClaimsFromToken(tokenStr string, secret []byte) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	return &claims, nil
}

// SubjectFromToken extracts the caller id claim without verifying the
// signature; used only to key per-user cache entries.
func SubjectFromToken(tokenStr string) string {
	if tokenStr == "" {
		return ""
	}
	var claims Claims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenStr, &claims); err != nil {
		return ""
	}
	return claims.Subject
}

// RoleFromToken extracts the advisory role claim without verifying
// the signature. Good enough to decide whether to render the admin
// surface; never a substitute for the backend's own check.
func RoleFromToken(tokenStr string) models.Role {
	if tokenStr == "" {
		return models.RoleGuest
	}
	var claims Claims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenStr, &claims); err != nil {
		return models.RoleGuest
	}
	switch models.Role(claims.Role) {
	case models.RoleAdmin, models.RoleUser:
		return models.Role(claims.Role)
	default:
		return models.RoleGuest
	}
}
