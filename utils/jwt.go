package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

// ErrOpaqueToken is returned when a token is not a JWT at all.
var ErrOpaqueToken = errors.New("token is not a JWT")

// TokenClaims holds the claims the client cares about.
type TokenClaims struct {
	Subject   string
	Email     string
	ExpiresAt time.Time
}

// ParseTokenClaims decodes the claims of a JWT without verifying its
// signature. The client never holds the signing secret; the backend stays the
// authority on validity.
func ParseTokenClaims(tokenString string) (*TokenClaims, error) {
	parser := &jwt.Parser{}
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, ErrOpaqueToken
	}

	out := &TokenClaims{}
	if sub, ok := claims["sub"].(string); ok {
		out.Subject = sub
	}
	if email, ok := claims["email"].(string); ok {
		out.Email = email
	}
	switch exp := claims["exp"].(type) {
	case float64:
		out.ExpiresAt = time.Unix(int64(exp), 0)
	case int64:
		out.ExpiresAt = time.Unix(exp, 0)
	}
	return out, nil
}

// TokenExpired reports whether a JWT carries an exp claim in the past.
// Opaque tokens and tokens without exp are never considered expired.
func TokenExpired(tokenString string, now time.Time) bool {
	claims, err := ParseTokenClaims(tokenString)
	if err != nil || claims.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(claims.ExpiresAt)
}
