package handler

import (
	"net/http"

	"github.com/meets/meets-go/internal/middleware"
	"github.com/meets/meets-go/internal/model"
	"github.com/meets/meets-go/internal/service"
	"github.com/meets/meets-go/internal/telemetry"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	service  *service.AuthService
	reporter *telemetry.Reporter
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, reporter *telemetry.Reporter) *AuthHandler {
	return &AuthHandler{service: svc, reporter: reporter}
}

// HandleSignup handles POST /api/v1/auth/signup requests.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req model.SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Signup(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, h.reporter, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// HandleLogin handles POST /api/v1/auth/login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, h.reporter, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleMe handles GET /api/v1/auth/me requests.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	resp, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, h.reporter, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
