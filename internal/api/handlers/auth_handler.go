package handlers

import (
	"net/http"

	"visitr/internal/engine/orgs"
	"visitr/internal/pkg/response"
)

type AuthHandler struct {
	orgs *orgs.Service
	dev  bool
}

func NewAuthHandler(orgSvc *orgs.Service, dev bool) *AuthHandler {
	return &AuthHandler{orgs: orgSvc, dev: dev}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.orgs.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err, h.dev)
		return
	}

	response.WriteJSON(w, http.StatusOK, "Login successful", result)
}

type RegisterResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req orgs.RegisterInput
	if !decodeJSON(w, r, &req) {
		return
	}

	org, err := h.orgs.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, err, h.dev)
		return
	}

	response.WriteJSON(w, http.StatusCreated, "Organization registered successfully", RegisterResponse{
		ID:    org.ID,
		Name:  org.Name,
		Email: org.Email,
	})
}
