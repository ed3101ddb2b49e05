package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"gritinterview/internal/service"
)

// AdminHandler handles host dashboard endpoints
type AdminHandler struct {
	interviewSvc *service.InterviewService
	statsSvc     *service.StatsService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(interviewSvc *service.InterviewService, statsSvc *service.StatsService) *AdminHandler {
	return &AdminHandler{
		interviewSvc: interviewSvc,
		statsSvc:     statsSvc,
	}
}

// ListSessions handles GET /v1/admin/sessions
func (h *AdminHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	items, err := h.interviewSvc.ListSessions(r.Context(), queryInt(r, "limit", 50))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// GetSession handles GET /v1/admin/sessions/{sessionId}
func (h *AdminHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.interviewSvc.GetState(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// GetSummary handles GET /v1/admin/sessions/{sessionId}/summary
func (h *AdminHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	report, err := h.interviewSvc.GetSummary(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Outcomes handles GET /v1/admin/outcomes
func (h *AdminHandler) Outcomes(w http.ResponseWriter, r *http.Request) {
	entries, err := h.statsSvc.TopOutcomes(r.Context(), queryInt(r, "limit", 10))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Traits handles GET /v1/admin/traits
func (h *AdminHandler) Traits(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsSvc.TraitStats(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func queryInt(r *http.Request, key string, defaultValue int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}
