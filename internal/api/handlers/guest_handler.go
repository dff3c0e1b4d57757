package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	apiContext "visitr/internal/api/context"
	"visitr/internal/engine/visits"
	"visitr/internal/pkg/response"
	"visitr/internal/platform/audit"
	"visitr/internal/platform/metrics"
)

type GuestHandler struct {
	visits *visits.Service
	dev    bool
}

func NewGuestHandler(visitSvc *visits.Service, dev bool) *GuestHandler {
	return &GuestHandler{visits: visitSvc, dev: dev}
}

type GuestCodeResponse struct {
	GuestCode string `json:"guestCode"`
}

func (h *GuestHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req visits.RegisterInput
	if !decodeJSON(w, r, &req) {
		return
	}

	guest, err := h.visits.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, err, h.dev)
		return
	}

	metrics.ObserveGuestEvent(metrics.EventRegistered)
	response.WriteJSON(w, http.StatusCreated, "Guest registered successfully", GuestCodeResponse{GuestCode: guest.GuestCode})
}

type SignOutRequest struct {
	GuestCode      string `json:"guestCode"`
	OrganizationID string `json:"organizationId"`
}

func (h *GuestHandler) SelfSignOut(w http.ResponseWriter, r *http.Request) {
	var req SignOutRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.visits.SelfSignOut(r.Context(), req.OrganizationID, req.GuestCode)
	if err != nil {
		writeError(w, r, err, h.dev)
		return
	}

	metrics.ObserveGuestEvent(metrics.EventSelfSignOut)
	response.WriteJSON(w, http.StatusOK, "Guest signed out successfully", result)
}

func (h *GuestHandler) List(w http.ResponseWriter, r *http.Request) {
	org := apiContext.OrganizationFrom(r.Context())

	page, err := h.visits.List(r.Context(), org.ID, r.URL.Query().Get("status"), queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		writeError(w, r, err, h.dev)
		return
	}

	response.WriteJSON(w, http.StatusOK, "Guests retrieved successfully", page)
}

// Export returns the rows as JSON, or as a CSV attachment with ?format=csv.
func (h *GuestHandler) Export(w http.ResponseWriter, r *http.Request) {
	org := apiContext.OrganizationFrom(r.Context())
	q := r.URL.Query()

	rows, err := h.visits.Export(r.Context(), org, q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		writeError(w, r, err, h.dev)
		return
	}

	audit.Log(r, audit.ActionGuestExport, "guest", "", map[string]interface{}{
		"rows":   len(rows),
		"format": q.Get("format"),
	})

	if q.Get("format") != "csv" {
		response.WriteJSON(w, http.StatusOK, "Guest data exported successfully", rows)
		return
	}

	filename := fmt.Sprintf("guests-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := visits.WriteCSV(w, rows); err != nil {
		// headers are already sent
		log.Error().Err(err).Str("organization_id", org.ID).Msg("failed to write csv export")
	}
}

type AssignIDRequest struct {
	IDCardNumber string `json:"idCardNumber"`
}

func (h *GuestHandler) AssignID(w http.ResponseWriter, r *http.Request) {
	org := apiContext.OrganizationFrom(r.Context())

	var req AssignIDRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.visits.AssignIDCard(r.Context(), org.ID, param(r, "id"), req.IDCardNumber); err != nil {
		writeError(w, r, err, h.dev)
		return
	}

	metrics.ObserveGuestEvent(metrics.EventIDAssigned)
	audit.Log(r, audit.ActionGuestAssignID, "guest", param(r, "id"), map[string]interface{}{"id_card_number": req.IDCardNumber})
	response.WriteJSON(w, http.StatusOK, "ID card assigned successfully", nil)
}

// AdminSignOut is used both by staff and by the dashboard's auto-expiry.
func (h *GuestHandler) AdminSignOut(w http.ResponseWriter, r *http.Request) {
	org := apiContext.OrganizationFrom(r.Context())

	if err := h.visits.AdminSignOut(r.Context(), org.ID, param(r, "id")); err != nil {
		writeError(w, r, err, h.dev)
		return
	}

	metrics.ObserveGuestEvent(metrics.EventSignOut)
	audit.Log(r, audit.ActionGuestSignOut, "guest", param(r, "id"), nil)
	response.WriteJSON(w, http.StatusOK, "Guest signed out successfully", nil)
}

type ExtendRequest struct {
	AdditionalMinutes int `json:"additionalMinutes"`
}

type ExtendResponse struct {
	NewExpectedDuration int `json:"newExpectedDuration"`
}

func (h *GuestHandler) Extend(w http.ResponseWriter, r *http.Request) {
	org := apiContext.OrganizationFrom(r.Context())

	var req ExtendRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	total, err := h.visits.Extend(r.Context(), org.ID, param(r, "id"), req.AdditionalMinutes)
	if err != nil {
		writeError(w, r, err, h.dev)
		return
	}

	metrics.ObserveGuestEvent(metrics.EventExtended)
	audit.Log(r, audit.ActionGuestExtend, "guest", param(r, "id"), map[string]interface{}{
		"additional_minutes":    req.AdditionalMinutes,
		"new_expected_duration": total,
	})
	response.WriteJSON(w, http.StatusOK,
		fmt.Sprintf("Visit extended by %d minutes", req.AdditionalMinutes),
		ExtendResponse{NewExpectedDuration: total})
}
