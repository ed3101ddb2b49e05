package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"gritinterview/internal/model"
	"gritinterview/internal/service"
)

// SessionHandler handles respondent interview endpoints
type SessionHandler struct {
	interviewSvc *service.InterviewService
	authSvc      *service.AuthService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(interviewSvc *service.InterviewService, authSvc *service.AuthService) *SessionHandler {
	return &SessionHandler{
		interviewSvc: interviewSvc,
		authSvc:      authSvc,
	}
}

// Start handles POST /v1/sessions
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	session, err := h.interviewSvc.StartSession(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	token, err := h.authSvc.GenerateRespondentToken(session.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusCreated, model.StartSessionResponse{
		Session: session,
		Token:   token,
	})
}

// Get handles GET /v1/sessions/{sessionId}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.interviewSvc.GetState(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// SubmitAnswer handles POST /v1/sessions/{sessionId}/answers
func (h *SessionHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req model.SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.interviewSvc.SubmitAnswer(r.Context(), mux.Vars(r)["sessionId"], req.TurnIndex, req.Answer)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// SaveDraft handles PUT /v1/sessions/{sessionId}/draft
func (h *SessionHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	var req model.DraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	draft := &model.Draft{TurnIndex: req.TurnIndex, Answer: req.Answer}
	if err := h.interviewSvc.SaveDraft(r.Context(), mux.Vars(r)["sessionId"], draft); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// GetDraft handles GET /v1/sessions/{sessionId}/draft
func (h *SessionHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := h.interviewSvc.GetDraft(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if draft == nil {
		writeError(w, http.StatusNotFound, "no draft")
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

// Summary handles GET /v1/sessions/{sessionId}/summary
func (h *SessionHandler) Summary(w http.ResponseWriter, r *http.Request) {
	report, err := h.interviewSvc.GetSummary(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Abandon handles DELETE /v1/sessions/{sessionId}
func (h *SessionHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	if err := h.interviewSvc.Abandon(r.Context(), mux.Vars(r)["sessionId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
