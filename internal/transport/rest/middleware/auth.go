// Package middleware resolves host and respondent identities from JWTs.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"gritinterview/internal/service"
)

type contextKey string

const (
	HostIDKey    contextKey = "hostId"
	SessionIDKey contextKey = "sessionId"
)

// AuthMiddleware guards host and respondent routes, REST and websocket alike
type AuthMiddleware struct {
	authSvc *service.AuthService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequireHost admits host tokens and stores the host ID in the request context
func (m *AuthMiddleware) RequireHost(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := requestToken(w, r)
		if !ok {
			return
		}
		claims, err := m.authSvc.ValidateHostToken(token)
		if err != nil {
			deny(w, http.StatusUnauthorized, "invalid or expired host token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), HostIDKey, claims.HostID)))
	})
}

// RequireRespondent admits a respondent token only on routes for the session it was issued for
func (m *AuthMiddleware) RequireRespondent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := requestToken(w, r)
		if !ok {
			return
		}
		claims, err := m.authSvc.ValidateRespondentToken(token)
		if err != nil {
			deny(w, http.StatusUnauthorized, "invalid or expired session token")
			return
		}
		if claims.SessionID != mux.Vars(r)["sessionId"] {
			deny(w, http.StatusForbidden, "token not valid for this session")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), SessionIDKey, claims.SessionID)))
	})
}

// GetHostID extracts host ID from context
func GetHostID(ctx context.Context) string {
	id, _ := ctx.Value(HostIDKey).(string)
	return id
}

// GetSessionID extracts the respondent's session ID from context
func GetSessionID(ctx context.Context) string {
	id, _ := ctx.Value(SessionIDKey).(string)
	return id
}

// requestToken reads the bearer header, falling back to ?token= for websocket upgrades.
// It writes the 401 itself when neither is present.
func requestToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	if scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " "); found && strings.EqualFold(scheme, "bearer") && token != "" {
		return token, true
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return token, true
	}
	deny(w, http.StatusUnauthorized, "missing authorization")
	return "", false
}

func deny(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
