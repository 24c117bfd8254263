package middleware

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
	apiContext "phacetnode/internal/api/context"
	"phacetnode/internal/pkg/errors"
	"phacetnode/internal/platform/auth"
)

// AuthMiddleware guards the host-facing API. It accepts either a JWT
// service token or, when an API key hash is configured, a static API key
// compared with bcrypt.
type AuthMiddleware struct {
	tokenSvc   *auth.TokenService
	apiKeyHash string
}

func NewAuthMiddleware(tokenSvc *auth.TokenService, apiKeyHash string) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc, apiKeyHash: apiKeyHash}
}

func (m *AuthMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Missing authorization header", nil)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid authorization header format", nil)
			return
		}

		if claims, err := m.tokenSvc.ValidateToken(parts[1]); err == nil {
			ctx := context.WithValue(r.Context(), apiContext.Claims, claims)
			next(w, r.WithContext(ctx))
			return
		}

		if m.apiKeyHash != "" {
			if err := bcrypt.CompareHashAndPassword([]byte(m.apiKeyHash), []byte(parts[1])); err == nil {
				next(w, r)
				return
			}
		}

		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid or expired token", nil)
	}
}
