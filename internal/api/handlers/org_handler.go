package handlers

import (
	"net/http"

	apiContext "visitr/internal/api/context"
	"visitr/internal/engine/orgs"
	"visitr/internal/pkg/response"
	"visitr/internal/platform/audit"
)

type OrgHandler struct {
	orgs *orgs.Service
	dev  bool
}

func NewOrgHandler(orgSvc *orgs.Service, dev bool) *OrgHandler {
	return &OrgHandler{orgs: orgSvc, dev: dev}
}

// GetPublic serves the guest sign-in form; inactive organizations are hidden.
func (h *OrgHandler) GetPublic(w http.ResponseWriter, r *http.Request) {
	org, err := h.orgs.GetPublic(r.Context(), param(r, "id"))
	if err != nil {
		writeError(w, r, err, h.dev)
		return
	}

	response.WriteJSON(w, http.StatusOK, "Organization retrieved successfully", org)
}

func (h *OrgHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	org := apiContext.OrganizationFrom(r.Context())

	var req orgs.UpdateInput
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.orgs.UpdateProfile(r.Context(), org.ID, req)
	if err != nil {
		writeError(w, r, err, h.dev)
		return
	}

	audit.Log(r, audit.ActionProfileUpdate, "organization", org.ID, nil)
	response.WriteJSON(w, http.StatusOK, "Organization updated successfully", updated)
}
