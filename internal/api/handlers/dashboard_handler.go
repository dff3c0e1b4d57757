package handlers

import (
	"net/http"

	apiContext "visitr/internal/api/context"
	"visitr/internal/engine/visits"
	"visitr/internal/pkg/response"
	"visitr/internal/platform/models"
)

type DashboardHandler struct {
	visits *visits.Service
	dev    bool
}

func NewDashboardHandler(visitSvc *visits.Service, dev bool) *DashboardHandler {
	return &DashboardHandler{visits: visitSvc, dev: dev}
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	org := apiContext.OrganizationFrom(r.Context())

	stats, err := h.visits.Stats(r.Context(), org.ID)
	if err != nil {
		writeError(w, r, err, h.dev)
		return
	}

	response.WriteJSON(w, http.StatusOK, "Dashboard statistics retrieved successfully", stats)
}

type ActivityResponse struct {
	RecentGuests []*models.Guest `json:"recentGuests"`
}

func (h *DashboardHandler) Activity(w http.ResponseWriter, r *http.Request) {
	org := apiContext.OrganizationFrom(r.Context())

	guests, err := h.visits.Recent(r.Context(), org.ID, queryInt(r, "limit"))
	if err != nil {
		writeError(w, r, err, h.dev)
		return
	}

	response.WriteJSON(w, http.StatusOK, "Recent activity retrieved successfully", ActivityResponse{RecentGuests: guests})
}
