package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"gritinterview/internal/config"
	"gritinterview/internal/model"
	"gritinterview/internal/service"
	"gritinterview/internal/transport/rest/middleware"
)

func receive(t *testing.T, ch <-chan []byte) Message {
	t.Helper()
	select {
	case data, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("bad message %q: %v", data, err)
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
	}
	return Message{}
}

func TestHubRoutesBySession(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	a := &Connection{SessionID: "a", Send: make(chan []byte, 4), Hub: hub}
	b := &Connection{SessionID: "b", Send: make(chan []byte, 4), Hub: hub}
	host := &Connection{IsHost: true, Send: make(chan []byte, 4), Hub: hub}
	hub.Register(a)
	hub.Register(b)
	hub.Register(host)

	hub.BroadcastToSession("a", service.EventNextQuestion, map[string]int{"index": 2})
	hub.BroadcastToHosts(service.EventSessionProgress, nil)

	msg := receive(t, a.Send)
	if msg.Type != service.EventNextQuestion || !strings.Contains(string(msg.Payload), `"index":2`) {
		t.Errorf("session message = %+v", msg)
	}
	if msg := receive(t, host.Send); msg.Type != service.EventSessionProgress {
		t.Errorf("host message = %+v", msg)
	}
	select {
	case data := <-b.Send:
		t.Errorf("session b received %s", data)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestHubDisconnectSession(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	conn := &Connection{SessionID: "a", Send: make(chan []byte, 1), Hub: hub}
	hub.Register(conn)
	hub.DisconnectSession("a")

	select {
	case _, ok := <-conn.Send:
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("connection not closed")
	}
	if n := hub.ConnectionCount("a"); n != 0 {
		t.Errorf("ConnectionCount = %d", n)
	}
}

func TestHubClose(t *testing.T) {
	hub := NewHub()
	conn := &Connection{IsHost: true, Send: make(chan []byte, 1), Hub: hub}
	hub.Register(conn)
	hub.Close()

	select {
	case _, ok := <-conn.Send:
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("connection not closed on hub close")
	}

	// calls after close must not block
	hub.BroadcastToHosts(service.EventSessionStarted, nil)
	hub.DisconnectSession("a")
	hub.Close()
}

// fakeState is an in-memory StateReader
type fakeState struct {
	sessions map[string]*model.Session
}

func (f *fakeState) GetState(ctx context.Context, sessionID string) (*model.Session, error) {
	if s, ok := f.sessions[sessionID]; ok {
		return s, nil
	}
	return nil, service.ErrSessionNotFound
}

func (f *fakeState) ListSessions(ctx context.Context, limit int) ([]model.SessionListItem, error) {
	items := make([]model.SessionListItem, 0, len(f.sessions))
	for id, s := range f.sessions {
		items = append(items, model.SessionListItem{ID: id, Phase: s.Phase, Turns: len(s.Turns)})
	}
	return items, nil
}

func newWSServer(t *testing.T, hub *Hub) (string, *service.AuthService) {
	t.Helper()
	auth := service.NewAuthService(&config.ServerConfig{JWTSecret: "test", HostUsername: "admin", HostPassword: "pw"})
	state := &fakeState{sessions: map[string]*model.Session{
		"s1": {
			ID:    "s1",
			Phase: model.PhaseAwaitingAnswer,
			Turns: []model.Turn{{Index: 1, Dimension: 1, Question: "What kept you going?"}},
		},
	}}
	h := NewHandler(hub, state)
	authMW := middleware.NewAuthMiddleware(auth)

	r := mux.NewRouter()
	r.Handle("/v1/ws/sessions/{sessionId}", authMW.RequireRespondent(http.HandlerFunc(h.SessionWS)))
	r.Handle("/v1/ws/host", authMW.RequireHost(http.HandlerFunc(h.HostWS)))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws", auth
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	return msg
}

func dialStatus(t *testing.T, url string) int {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		conn.Close()
		t.Fatalf("dial %s succeeded", url)
	}
	if resp == nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	return resp.StatusCode
}

func TestSessionWSRejects(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	base, auth := newWSServer(t, hub)

	other, _ := auth.GenerateRespondentToken("other")
	if code := dialStatus(t, base+"/sessions/s1?token="+other); code != http.StatusForbidden {
		t.Errorf("foreign token: status %d, want 403", code)
	}
	if code := dialStatus(t, base+"/sessions/s1"); code != http.StatusUnauthorized {
		t.Errorf("no token: status %d, want 401", code)
	}
	ghost, _ := auth.GenerateRespondentToken("ghost")
	if code := dialStatus(t, base+"/sessions/ghost?token="+ghost); code != http.StatusNotFound {
		t.Errorf("unknown session: status %d, want 404", code)
	}
}

func TestSessionWSSnapshotThenEvents(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	base, auth := newWSServer(t, hub)

	token, _ := auth.GenerateRespondentToken("s1")
	conn, _, err := websocket.DefaultDialer.Dial(base+"/sessions/s1?token="+token, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	msg := readMessage(t, conn)
	if msg.Type != service.EventSessionState {
		t.Fatalf("first message = %q, want %q", msg.Type, service.EventSessionState)
	}
	var snapshot model.Session
	if err := json.Unmarshal(msg.Payload, &snapshot); err != nil {
		t.Fatal(err)
	}
	if snapshot.ID != "s1" || snapshot.Phase != model.PhaseAwaitingAnswer || len(snapshot.Turns) != 1 {
		t.Errorf("unexpected snapshot %+v", snapshot)
	}

	deadline := time.Now().Add(time.Second)
	for hub.ConnectionCount("s1") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("connection never registered")
		}
		time.Sleep(time.Millisecond)
	}

	hub.BroadcastToSession("s1", service.EventEvaluating, map[string]int{"turnIndex": 1})
	if msg := readMessage(t, conn); msg.Type != service.EventEvaluating {
		t.Errorf("Type = %q", msg.Type)
	}

	hub.DisconnectSession("s1")
	conn.SetReadDeadline(time.Now().Add(time.Second))
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("err = %v, want normal closure", err)
	}
}

func TestHostWSSnapshot(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	base, auth := newWSServer(t, hub)

	respondent, _ := auth.GenerateRespondentToken("s1")
	if code := dialStatus(t, base+"/host?token="+respondent); code != http.StatusUnauthorized {
		t.Errorf("respondent token on host socket: status %d, want 401", code)
	}

	login, err := auth.Login("admin", "pw")
	if err != nil {
		t.Fatal(err)
	}
	conn, _, err := websocket.DefaultDialer.Dial(base+"/host?token="+login.Token, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	msg := readMessage(t, conn)
	if msg.Type != service.EventLiveSessions {
		t.Fatalf("first message = %q, want %q", msg.Type, service.EventLiveSessions)
	}
	var items []model.SessionListItem
	if err := json.Unmarshal(msg.Payload, &items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].ID != "s1" {
		t.Errorf("unexpected host snapshot %+v", items)
	}
}
