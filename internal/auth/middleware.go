// Fahrplanbuch - Historical Berlin Transit Network API
// Copyright 2026 Fahrplanbuch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fahrplanbuch/fahrplanbuch

package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/fahrplanbuch/fahrplanbuch/internal/logging"
	"github.com/fahrplanbuch/fahrplanbuch/internal/models"
)

type contextKey string

// ClaimsContextKey stores the validated *Claims in the request context.
const ClaimsContextKey contextKey = "claims"

// Middleware enforces bearer token authentication on protected routes.
type Middleware struct {
	jwtManager *JWTManager
}

// NewMiddleware creates the authentication middleware.
func NewMiddleware(jwtManager *JWTManager) *Middleware {
	return &Middleware{jwtManager: jwtManager}
}

// Authenticate validates the bearer token from the Authorization header
// or the "token" cookie and stores the claims in the request context.
func (m *Middleware) Authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// No signing secret configured means no token can ever verify.
		if m.jwtManager == nil {
			writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication not configured")
			return
		}

		token, errMsg := extractToken(r)
		if token == "" {
			writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", errMsg)
			return
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("token validation failed")
			writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// RequireRole enforces that the authenticated user holds the given role.
// The admin role passes every check.
func (m *Middleware) RequireRole(role string, next http.HandlerFunc) http.HandlerFunc {
	return m.Authenticate(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "invalid claims")
			return
		}

		if claims.Role != role && claims.Role != "admin" {
			logging.Ctx(r.Context()).Warn().
				Str("username", claims.Username).
				Str("role", claims.Role).
				Str("required", role).
				Msg("insufficient permissions")
			writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
			return
		}

		next(w, r)
	})
}

// ClaimsFromContext retrieves the validated claims from the context.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*Claims)
	return claims, ok
}

// extractToken pulls the token from the Authorization header, falling
// back to the "token" cookie. The second return value is the error
// message to send when no token was found.
func extractToken(r *http.Request) (token, errMsg string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		cookie, err := r.Cookie("token")
		if err != nil {
			return "", "missing bearer token"
		}
		return cookie.Value, ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", "malformed authorization header"
	}

	return parts[1], ""
}

// writeAuthError emits the standard JSON error envelope. The api package
// has its own helpers but importing it here would be a cycle.
func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error().Err(err).Msg("failed to encode auth error response")
	}
}
