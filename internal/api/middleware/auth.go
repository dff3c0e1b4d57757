package middleware

import (
	"context"
	"net/http"
	"strings"

	apiContext "visitr/internal/api/context"
	"visitr/internal/pkg/response"
	"visitr/internal/platform/auth"
)

type AuthMiddleware struct {
	tokenSvc *auth.TokenService
}

func NewAuthMiddleware(tokenSvc *auth.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

func (m *AuthMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scheme, token, _ := strings.Cut(r.Header.Get("Authorization"), " ")
		if scheme != "Bearer" || strings.TrimSpace(token) == "" {
			response.WriteError(w, http.StatusUnauthorized, "Access token required", "")
			return
		}

		claims, err := m.tokenSvc.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			response.WriteError(w, http.StatusForbidden, "Invalid or expired token", "")
			return
		}

		ctx := context.WithValue(r.Context(), apiContext.Claims, claims)
		next(w, r.WithContext(ctx))
	}
}
