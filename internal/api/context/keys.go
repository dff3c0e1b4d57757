package context

import (
	"context"

	"visitr/internal/platform/models"
)

type Key string

const (
	Claims       Key = "claims"
	Organization Key = "organization"
	Params       Key = "params"
)

// OrganizationFrom returns the organization resolved for an authenticated
// request, or nil outside the tenant middleware.
func OrganizationFrom(ctx context.Context) *models.Organization {
	org, _ := ctx.Value(Organization).(*models.Organization)
	return org
}
