// Package testhelpers provides utilities for testing horoscape-engine
// components.
package testhelpers

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/horoscape/horoscape-engine/pkg/auth"
)

// GenerateTestJWT creates a signed test token for the given user. The
// signing key must match the middleware under test.
func GenerateTestJWT(signingKey, userID, email string) (string, error) {
	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Email: email,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingKey))
}
