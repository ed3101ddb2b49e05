package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/swaggo/swag"

	"gritinterview/internal/service"
	"gritinterview/internal/transport/rest/handler"
	"gritinterview/internal/transport/rest/middleware"
	"gritinterview/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService      *service.AuthService
	InterviewService *service.InterviewService
	StatsService     *service.StatsService
	WSHub            *ws.Hub
	CORSOrigins      string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	sessionHandler := handler.NewSessionHandler(c.InterviewService, c.AuthService)
	adminHandler := handler.NewAdminHandler(c.InterviewService, c.StatsService)
	wsHandler := ws.NewHandler(c.WSHub, c.InterviewService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.CORSOrigins))

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions", sessionHandler.Start).Methods("POST", "OPTIONS")
	v1.HandleFunc("/openapi.json", openAPI).Methods("GET")

	// WebSocket routes (token in query param)
	v1.Handle("/ws/sessions/{sessionId}", authMW.RequireRespondent(http.HandlerFunc(wsHandler.SessionWS))).Methods("GET")
	v1.Handle("/ws/host", authMW.RequireHost(http.HandlerFunc(wsHandler.HostWS))).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Host routes (require host auth)
	hostRoutes := v1.PathPrefix("/admin").Subrouter()
	hostRoutes.Use(authMW.RequireHost)

	hostRoutes.HandleFunc("/sessions", adminHandler.ListSessions).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/sessions/{sessionId}", adminHandler.GetSession).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/sessions/{sessionId}/summary", adminHandler.GetSummary).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/outcomes", adminHandler.Outcomes).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/traits", adminHandler.Traits).Methods("GET", "OPTIONS")

	// Respondent routes (require a token for the same session)
	respondentRoutes := v1.PathPrefix("/sessions/{sessionId}").Subrouter()
	respondentRoutes.Use(authMW.RequireRespondent)

	respondentRoutes.HandleFunc("", sessionHandler.Get).Methods("GET", "OPTIONS")
	respondentRoutes.HandleFunc("", sessionHandler.Abandon).Methods("DELETE", "OPTIONS")
	respondentRoutes.HandleFunc("/answers", sessionHandler.SubmitAnswer).Methods("POST", "OPTIONS")
	respondentRoutes.HandleFunc("/draft", sessionHandler.SaveDraft).Methods("PUT", "OPTIONS")
	respondentRoutes.HandleFunc("/draft", sessionHandler.GetDraft).Methods("GET", "OPTIONS")
	respondentRoutes.HandleFunc("/summary", sessionHandler.Summary).Methods("GET", "OPTIONS")

	return r
}

// openAPI serves the registered swagger document
func openAPI(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"api document not registered"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(doc))
}

func corsMiddleware(allowedOrigins string) mux.MiddlewareFunc {
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
