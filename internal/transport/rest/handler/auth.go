package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"gritinterview/internal/model"
	"gritinterview/internal/service"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authSvc *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authSvc *service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.authSvc.Login(req.Username, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeServiceError maps service errors to HTTP statuses
func writeServiceError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrEmptyAnswer):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrSessionComplete),
		errors.Is(err, service.ErrSessionBusy),
		errors.Is(err, service.ErrTurnMismatch),
		errors.Is(err, service.ErrSessionIncomplete):
		return http.StatusConflict
	case errors.Is(err, service.ErrMalformedEvaluation),
		errors.Is(err, service.ErrJobFailed),
		errors.Is(err, service.ErrJobCancelled),
		errors.Is(err, service.ErrEmptyQuestion):
		return http.StatusBadGateway
	case errors.Is(err, service.ErrJobTimeout):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
