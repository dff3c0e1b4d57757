package handlers

import (
	"net/http"
	"strconv"

	apiContext "visitr/internal/api/context"
	"visitr/internal/engine/orgs"
	"visitr/internal/pkg/response"
	"visitr/internal/platform/audit"
)

type QRHandler struct {
	orgs *orgs.Service
	dev  bool
}

func NewQRHandler(orgSvc *orgs.Service, dev bool) *QRHandler {
	return &QRHandler{orgs: orgSvc, dev: dev}
}

type QRCodeResponse struct {
	QRCodeURL *string `json:"qrCodeUrl"`
}

func (h *QRHandler) Generate(w http.ResponseWriter, r *http.Request) {
	org := apiContext.OrganizationFrom(r.Context())

	dataURL, err := h.orgs.GenerateQR(r.Context(), org)
	if err != nil {
		writeError(w, r, err, h.dev)
		return
	}

	audit.Log(r, audit.ActionQRCodeGenerate, "organization", org.ID, nil)
	response.WriteJSON(w, http.StatusOK, "QR code generated successfully", QRCodeResponse{QRCodeURL: &dataURL})
}

func (h *QRHandler) Current(w http.ResponseWriter, r *http.Request) {
	org := apiContext.OrganizationFrom(r.Context())

	current, err := h.orgs.CurrentQR(r.Context(), org.ID)
	if err != nil {
		writeError(w, r, err, h.dev)
		return
	}

	response.WriteJSON(w, http.StatusOK, "QR code retrieved successfully", QRCodeResponse{QRCodeURL: current})
}

// Download serves a print resolution PNG of the sign-in QR code.
func (h *QRHandler) Download(w http.ResponseWriter, r *http.Request) {
	org := apiContext.OrganizationFrom(r.Context())

	png, err := h.orgs.PrintableQR(org)
	if err != nil {
		writeError(w, r, err, h.dev)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Content-Disposition", `attachment; filename="visitor-qr-code.png"`)
	w.Write(png)
}
