package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	_ "gritinterview/docs"
	"gritinterview/internal/cache"
	"gritinterview/internal/config"
	"gritinterview/internal/model"
	"gritinterview/internal/oracle"
	"gritinterview/internal/service"
	"gritinterview/internal/transport/ws"
)

type memorySessionRepo struct {
	mu       sync.Mutex
	sessions map[string]model.Session
}

func (r *memorySessionRepo) Archive(ctx context.Context, s *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = *s
	return nil
}

func (r *memorySessionRepo) GetByID(ctx context.Context, id string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		return &s, nil
	}
	return nil, nil
}

func (r *memorySessionRepo) ListRecent(ctx context.Context, limit int64) ([]*model.Session, error) {
	return nil, nil
}

type memoryReportRepo struct {
	mu      sync.Mutex
	reports map[string]model.SummaryReport
}

func (r *memoryReportRepo) SaveSummary(ctx context.Context, rep *model.SummaryReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports[rep.SessionID] = *rep
	return nil
}

func (r *memoryReportRepo) GetSummary(ctx context.Context, id string) (*model.SummaryReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rep, ok := r.reports[id]; ok {
		return &rep, nil
	}
	return nil, nil
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := config.DefaultInterviewConfig()
	traits, err := cfg.TraitTable()
	if err != nil {
		t.Fatal(err)
	}
	weights, err := cfg.WeightTable()
	if err != nil {
		t.Fatal(err)
	}

	sessions := cache.NewSessionCache(rdb)
	archive := &memorySessionRepo{sessions: make(map[string]model.Session)}
	reports := &memoryReportRepo{reports: make(map[string]model.SummaryReport)}

	poller := service.NewJobPoller(oracle.NewMockOracle(0), time.Millisecond, time.Second)
	outcome := service.NewOutcomeCalculator(weights, cfg.Scale.Max)
	summary := service.NewSummaryService(poller, outcome, traits, cfg.MaxTurns, reports, archive, sessions)
	stats := service.NewStatsService(cache.NewTraitStatsCache(rdb), cache.NewOutcomeBoardCache(rdb), traits)

	interview := service.NewInterviewService(
		cfg, traits, sessions,
		cache.NewDraftCache(rdb),
		cache.NewSessionLock(rdb),
		archive,
		service.NewEvaluatorService(poller, traits, cfg.Scale),
		service.NewQuestionService(poller, traits),
		service.NewTraitScheduler(cfg.Selection, cfg.Seed),
		outcome, summary, time.Second,
	)
	interview.SetStatsService(stats)

	hub := ws.NewHub()
	t.Cleanup(hub.Close)
	interview.SetBroadcaster(hub)

	return NewRouter(&Container{
		AuthService: service.NewAuthService(&config.ServerConfig{
			HostUsername: "admin",
			HostPassword: "secret",
			JWTSecret:    "test-secret",
		}),
		InterviewService: interview,
		StatsService:     stats,
		WSHub:            hub,
	})
}

func do(t *testing.T, h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func startSession(t *testing.T, h http.Handler) model.StartSessionResponse {
	t.Helper()
	w := do(t, h, http.MethodPost, "/v1/sessions", "", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d, body=%s", w.Code, w.Body.String())
	}
	var resp model.StartSessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestHealth(t *testing.T) {
	h := newTestServer(t)
	w := do(t, h, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}

func TestOpenAPIDocument(t *testing.T) {
	h := newTestServer(t)
	w := do(t, h, http.MethodGet, "/v1/openapi.json", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("document is not JSON: %v", err)
	}
	if _, ok := doc["paths"]; !ok {
		t.Error("document has no paths")
	}
}

func TestInterviewOverHTTP(t *testing.T) {
	h := newTestServer(t)
	started := startSession(t, h)
	id := started.Session.ID

	w := do(t, h, http.MethodGet, "/v1/sessions/"+id, started.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}

	w = do(t, h, http.MethodPost, "/v1/sessions/"+id+"/answers", started.Token, model.SubmitAnswerRequest{
		TurnIndex: 1,
		Answer:    "I trained for a marathon over two years and kept going after an injury set me back.",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}
	var resp model.SubmitAnswerResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Score == nil || resp.NextTurn == nil || resp.NextTurn.Index != 2 {
		t.Fatalf("unexpected response %s", w.Body.String())
	}

	w = do(t, h, http.MethodPost, "/v1/sessions/"+id+"/answers", started.Token, model.SubmitAnswerRequest{TurnIndex: 5, Answer: "x"})
	if w.Code != http.StatusConflict {
		t.Errorf("turn mismatch: expected 409, got %d", w.Code)
	}

	w = do(t, h, http.MethodGet, "/v1/sessions/"+id+"/summary", started.Token, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("early summary: expected 409, got %d", w.Code)
	}

	w = do(t, h, http.MethodPut, "/v1/sessions/"+id+"/draft", started.Token, model.DraftRequest{TurnIndex: 2, Answer: "thinking"})
	if w.Code != http.StatusOK {
		t.Errorf("draft: expected 200, got %d, body=%s", w.Code, w.Body.String())
	}
	w = do(t, h, http.MethodGet, "/v1/sessions/"+id+"/draft", started.Token, nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "thinking") {
		t.Errorf("get draft: %d %s", w.Code, w.Body.String())
	}

	w = do(t, h, http.MethodDelete, "/v1/sessions/"+id, started.Token, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("abandon: expected 204, got %d", w.Code)
	}
}

func TestRespondentTokenScopedToSession(t *testing.T) {
	h := newTestServer(t)
	first := startSession(t, h)
	second := startSession(t, h)

	w := do(t, h, http.MethodGet, "/v1/sessions/"+first.Session.ID, second.Token, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}

	w = do(t, h, http.MethodGet, "/v1/sessions/"+first.Session.ID, "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}

	w = do(t, h, http.MethodGet, "/v1/sessions/"+first.Session.ID+"?token="+first.Token, "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("query token: expected 200, got %d", w.Code)
	}
}

func TestAdminRoutes(t *testing.T) {
	h := newTestServer(t)
	started := startSession(t, h)

	w := do(t, h, http.MethodGet, "/v1/admin/sessions", started.Token, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("respondent token on admin route: expected 401, got %d", w.Code)
	}

	w = do(t, h, http.MethodPost, "/v1/auth/login", "", model.LoginRequest{Username: "admin", Password: "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad login: expected 401, got %d", w.Code)
	}

	w = do(t, h, http.MethodPost, "/v1/auth/login", "", model.LoginRequest{Username: "admin", Password: "secret"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", w.Code)
	}
	var login model.LoginResponse
	json.Unmarshal(w.Body.Bytes(), &login)

	w = do(t, h, http.MethodGet, "/v1/admin/sessions", login.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d, body=%s", w.Code, w.Body.String())
	}
	var items []model.SessionListItem
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].ID != started.Session.ID {
		t.Errorf("sessions = %+v", items)
	}

	w = do(t, h, http.MethodGet, "/v1/admin/traits", login.Token, nil)
	var traits []model.TraitStat
	if err := json.Unmarshal(w.Body.Bytes(), &traits); err != nil || len(traits) != model.TraitCount {
		t.Errorf("traits = %s", w.Body.String())
	}

	w = do(t, h, http.MethodGet, "/v1/admin/sessions/missing", login.Token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing session: expected 404, got %d", w.Code)
	}
}
