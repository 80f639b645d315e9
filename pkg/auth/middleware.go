package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Middleware provides HTTP authentication middleware. Tokens are HMAC-signed
// bearer JWTs whose subject is the user's UUID. When verification is
// disabled (local development), the X-User-ID header stands in for a token.
type Middleware struct {
	signingKey []byte
	verify     bool
	logger     *zap.Logger
}

// NewMiddleware creates a new auth middleware.
func NewMiddleware(signingKey string, verify bool, logger *zap.Logger) *Middleware {
	return &Middleware{
		signingKey: []byte(signingKey),
		verify:     verify,
		logger:     logger,
	}
}

// RequireUser validates the request's credentials and injects the claims and
// raw token into the context. Requests without a resolvable user get 401.
func (m *Middleware) RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, token, err := m.authenticate(r)
		if err != nil {
			m.logger.Debug("request authentication failed",
				zap.String("path", r.URL.Path),
				zap.Error(err))
			m.unauthorized(w, "Authentication required")
			return
		}

		if _, err := uuid.Parse(claims.Subject); err != nil {
			m.unauthorized(w, "Invalid user identifier")
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsKey, claims)
		ctx = context.WithValue(ctx, TokenKey, token)
		next(w, r.WithContext(ctx))
	}
}

func (m *Middleware) authenticate(r *http.Request) (*Claims, string, error) {
	if !m.verify {
		userID := r.Header.Get("X-User-ID")
		if userID == "" {
			return nil, "", fmt.Errorf("missing X-User-ID header")
		}
		return &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: userID}}, "", nil
	}

	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, "", fmt.Errorf("missing Authorization header")
	}
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return nil, "", fmt.Errorf("malformed Authorization header")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.signingKey, nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, "", fmt.Errorf("invalid token")
	}

	return claims, raw, nil
}

// unauthorized returns a 401 response with JSON error body.
func (m *Middleware) unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "authentication_required",
		"message": message,
	})
}
