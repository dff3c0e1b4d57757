package middleware

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	apiContext "visitr/internal/api/context"
	"visitr/internal/pkg/response"
	"visitr/internal/platform/auth"
	"visitr/internal/platform/models"
)

type OrgFinder interface {
	GetByID(ctx context.Context, id string) (*models.Organization, error)
}

// TenantMiddleware loads the organization named by the token claims. It
// must run after AuthMiddleware.
type TenantMiddleware struct {
	orgs OrgFinder
}

func NewTenantMiddleware(orgs OrgFinder) *TenantMiddleware {
	return &TenantMiddleware{orgs: orgs}
}

func (m *TenantMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := r.Context().Value(apiContext.Claims).(*auth.Claims)
		if !ok {
			response.WriteError(w, http.StatusUnauthorized, "Access token required", "")
			return
		}

		org, err := m.orgs.GetByID(r.Context(), claims.OrganizationID)
		if err != nil {
			log.Error().Err(err).Str("organization_id", claims.OrganizationID).Msg("failed to load organization")
			response.WriteError(w, http.StatusInternalServerError, "Internal server error", "")
			return
		}
		if org == nil {
			response.WriteError(w, http.StatusUnauthorized, "Invalid token", "")
			return
		}

		ctx := context.WithValue(r.Context(), apiContext.Organization, org)
		next(w, r.WithContext(ctx))
	}
}
