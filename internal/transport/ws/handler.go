package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"gritinterview/internal/model"
	"gritinterview/internal/service"
	"gritinterview/internal/transport/rest/middleware"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512

	sendBuffer    = 256
	liveListLimit = 50
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// StateReader loads what a new connection is shown before live events
type StateReader interface {
	GetState(ctx context.Context, sessionID string) (*model.Session, error)
	ListSessions(ctx context.Context, limit int) ([]model.SessionListItem, error)
}

// Handler upgrades authenticated requests and primes each connection with a snapshot.
// Routes must sit behind middleware.RequireHost or middleware.RequireRespondent.
type Handler struct {
	hub   *Hub
	state StateReader
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, state StateReader) *Handler {
	return &Handler{hub: hub, state: state}
}

// HostWS handles GET /v1/ws/host: the live session list, then every host event
func (h *Handler) HostWS(w http.ResponseWriter, r *http.Request) {
	items, err := h.state.ListSessions(r.Context(), liveListLimit)
	if err != nil {
		log.Printf("[WS] Listing sessions for host snapshot: %v", err)
		http.Error(w, "session list unavailable", http.StatusInternalServerError)
		return
	}

	h.serve(w, r, &Connection{IsHost: true}, service.EventLiveSessions, items)
	log.Printf("[WS] Host %s subscribed to session events", middleware.GetHostID(r.Context()))
}

// SessionWS handles GET /v1/ws/sessions/{sessionId}: the current session state, then its events
func (h *Handler) SessionWS(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())

	session, err := h.state.GetState(r.Context(), sessionID)
	if errors.Is(err, service.ErrSessionNotFound) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("[WS] Loading session %s: %v", sessionID, err)
		http.Error(w, "session state unavailable", http.StatusInternalServerError)
		return
	}

	h.serve(w, r, &Connection{SessionID: sessionID}, service.EventSessionState, session)
}

// serve upgrades the request, queues the snapshot ahead of any hub event and starts the pumps
func (h *Handler) serve(w http.ResponseWriter, r *http.Request, conn *Connection, snapshotType string, snapshot interface{}) {
	data, err := json.Marshal(newMessage(snapshotType, snapshot))
	if err != nil {
		http.Error(w, "encoding snapshot", http.StatusInternalServerError)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	conn.Send = make(chan []byte, sendBuffer)
	conn.Hub = h.hub
	conn.Send <- data
	h.hub.Register(conn)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		return wsConn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := wsConn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] Read error: %v", err)
			}
			return
		}
		// inbound messages are ignored; answers go through REST
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// hub closed the session: abandoned, summarized or shutting down
				wsConn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := wsConn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
