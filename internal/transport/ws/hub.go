package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Hub fans events out to respondent and host connections
type Hub struct {
	// Session -> connections (a respondent may have several tabs open)
	sessionConns map[string]map[*Connection]bool
	hostConns    map[*Connection]bool

	mu sync.RWMutex

	// Channels for coordination
	register   chan *Connection
	unregister chan *Connection
	disconnect chan string
	broadcast  chan *BroadcastMessage
	done       chan struct{}
	closeOnce  sync.Once
}

// Connection represents a WebSocket connection
type Connection struct {
	SessionID string // Empty for host connections
	IsHost    bool
	Send      chan []byte
	Hub       *Hub
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	SessionID string
	ToHosts   bool
	Message   *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		sessionConns: make(map[string]map[*Connection]bool),
		hostConns:    make(map[*Connection]bool),
		register:     make(chan *Connection),
		unregister:   make(chan *Connection),
		disconnect:   make(chan string, 16),
		broadcast:    make(chan *BroadcastMessage, 256),
		done:         make(chan struct{}),
	}
	go h.run()
	return h
}

// Close stops the hub loop and closes every connection
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

func (h *Hub) run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for conn := range h.hostConns {
				close(conn.Send)
			}
			for _, conns := range h.sessionConns {
				for conn := range conns {
					close(conn.Send)
				}
			}
			h.hostConns = make(map[*Connection]bool)
			h.sessionConns = make(map[string]map[*Connection]bool)
			h.mu.Unlock()
			return

		case conn := <-h.register:
			h.mu.Lock()
			if conn.IsHost {
				h.hostConns[conn] = true
				log.Printf("[WS] Host connected")
			} else {
				if h.sessionConns[conn.SessionID] == nil {
					h.sessionConns[conn.SessionID] = make(map[*Connection]bool)
				}
				h.sessionConns[conn.SessionID][conn] = true
				log.Printf("[WS] Respondent connected to session %s", conn.SessionID)
			}
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if conn.IsHost {
				if h.hostConns[conn] {
					delete(h.hostConns, conn)
					close(conn.Send)
				}
			} else if conns, ok := h.sessionConns[conn.SessionID]; ok && conns[conn] {
				delete(conns, conn)
				close(conn.Send)
				if len(conns) == 0 {
					delete(h.sessionConns, conn.SessionID)
				}
				log.Printf("[WS] Respondent disconnected from session %s", conn.SessionID)
			}
			h.mu.Unlock()

		case sessionID := <-h.disconnect:
			h.mu.Lock()
			for conn := range h.sessionConns[sessionID] {
				close(conn.Send)
			}
			delete(h.sessionConns, sessionID)
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)

			var targets map[*Connection]bool
			if msg.ToHosts {
				targets = h.hostConns
			} else {
				targets = h.sessionConns[msg.SessionID]
			}
			for conn := range targets {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
		close(conn.Send)
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// ConnectionCount returns the number of respondent connections for a session
func (h *Hub) ConnectionCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessionConns[sessionID])
}

// BroadcastToSession sends a message to a session's respondent (implements service.Broadcaster)
func (h *Hub) BroadcastToSession(sessionID string, msgType string, payload interface{}) {
	h.send(&BroadcastMessage{SessionID: sessionID, Message: newMessage(msgType, payload)})
}

// BroadcastToHosts sends a message to every connected host (implements service.Broadcaster)
func (h *Hub) BroadcastToHosts(msgType string, payload interface{}) {
	h.send(&BroadcastMessage{ToHosts: true, Message: newMessage(msgType, payload)})
}

// DisconnectSession closes all connections of a session (implements service.Broadcaster)
func (h *Hub) DisconnectSession(sessionID string) {
	select {
	case h.disconnect <- sessionID:
	case <-h.done:
	}
}

func (h *Hub) send(msg *BroadcastMessage) {
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

func newMessage(msgType string, payload interface{}) *Message {
	msg := &Message{Type: msgType}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			log.Printf("[WS] Failed to encode %s payload: %v", msgType, err)
		} else {
			msg.Payload = data
		}
	}
	return msg
}
