package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gritinterview/internal/config"
	"gritinterview/internal/model"
	"gritinterview/internal/oracle"
)

// fakeOracle answers jobs from a respond func. When script is set, successive
// Status calls of each job walk the script and repeat its last entry.
type fakeOracle struct {
	mu        sync.Mutex
	script    []model.JobStatus
	respond   func(req oracle.Request) (model.JobStatus, string)
	statusErr error
	submitErr error
	// hold keeps every job running until it is closed
	hold chan struct{}

	next      int
	jobs      map[string]*fakeJob
	submitted []oracle.Request
	cancelled []string
}

type fakeJob struct {
	req   oracle.Request
	polls int
	final model.JobStatus
	text  string
}

func newFakeOracle(respond func(req oracle.Request) (model.JobStatus, string)) *fakeOracle {
	return &fakeOracle{respond: respond, jobs: make(map[string]*fakeJob)}
}

func (f *fakeOracle) Submit(ctx context.Context, req oracle.Request) (*model.AsyncJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.next++
	job := &model.AsyncJob{
		ID:          fmt.Sprintf("job_%d", f.next),
		ContextID:   fmt.Sprintf("ctx_%d", f.next),
		Kind:        req.Kind,
		Status:      model.JobQueued,
		SubmittedAt: time.Now(),
	}
	fj := &fakeJob{req: req, final: model.JobCompleted}
	if f.respond != nil {
		fj.final, fj.text = f.respond(req)
	}
	f.jobs[job.ID] = fj
	f.submitted = append(f.submitted, req)
	return job, nil
}

func (f *fakeOracle) Status(ctx context.Context, job *model.AsyncJob) (model.JobStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr != nil {
		return "", f.statusErr
	}
	fj, ok := f.jobs[job.ID]
	if !ok {
		return "", oracle.ErrUnknownJob
	}
	if f.hold != nil {
		select {
		case <-f.hold:
		default:
			return model.JobRunning, nil
		}
	}
	fj.polls++
	if len(f.script) == 0 {
		return fj.final, nil
	}
	i := fj.polls - 1
	if i >= len(f.script) {
		i = len(f.script) - 1
	}
	return f.script[i], nil
}

func (f *fakeOracle) Result(ctx context.Context, job *model.AsyncJob) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fj, ok := f.jobs[job.ID]
	if !ok {
		return "", oracle.ErrUnknownJob
	}
	return fj.text, nil
}

func (f *fakeOracle) Cancel(ctx context.Context, job *model.AsyncJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, job.ID)
	return nil
}

func (f *fakeOracle) submittedKinds() []model.JobKind {
	f.mu.Lock()
	defer f.mu.Unlock()
	kinds := make([]model.JobKind, len(f.submitted))
	for i, r := range f.submitted {
		kinds[i] = r.Kind
	}
	return kinds
}

func (f *fakeOracle) countKind(kind model.JobKind) int {
	n := 0
	for _, k := range f.submittedKinds() {
		if k == kind {
			n++
		}
	}
	return n
}

// fakeSessionRepo is an in-memory SessionRepo
type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]model.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]model.Session)}
}

func (r *fakeSessionRepo) Archive(ctx context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = *session
	return nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, id string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *fakeSessionRepo) ListRecent(ctx context.Context, limit int64) ([]*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		s := s
		out = append(out, &s)
	}
	return out, nil
}

// fakeReportRepo is an in-memory ReportRepo
type fakeReportRepo struct {
	mu      sync.Mutex
	reports map[string]model.SummaryReport
	saves   int
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{reports: make(map[string]model.SummaryReport)}
}

func (r *fakeReportRepo) SaveSummary(ctx context.Context, report *model.SummaryReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	r.reports[report.SessionID] = *report
	return nil
}

func (r *fakeReportRepo) GetSummary(ctx context.Context, sessionID string) (*model.SummaryReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rep, ok := r.reports[sessionID]
	if !ok {
		return nil, nil
	}
	return &rep, nil
}

// fakeSessionCache is an in-memory SessionCache
type fakeSessionCache struct {
	mu       sync.Mutex
	sessions map[string]model.Session
}

func newFakeSessionCache() *fakeSessionCache {
	return &fakeSessionCache{sessions: make(map[string]model.Session)}
}

func (c *fakeSessionCache) Set(ctx context.Context, session *model.Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[session.ID] = *session
	return nil
}

func (c *fakeSessionCache) Get(ctx context.Context, id string) (*model.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (c *fakeSessionCache) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, id)
	return nil
}

func (c *fakeSessionCache) ListLive(ctx context.Context, limit int) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.sessions))
	for id := range c.sessions {
		ids = append(ids, id)
	}
	return ids, nil
}

var errOracleDown = errors.New("oracle unreachable")

func testTables(t interface{ Fatal(...any) }) (*config.InterviewConfig, *model.TraitTable, *model.WeightTable) {
	cfg := config.DefaultInterviewConfig()
	traits, err := cfg.TraitTable()
	if err != nil {
		t.Fatal(err)
	}
	weights, err := cfg.WeightTable()
	if err != nil {
		t.Fatal(err)
	}
	return cfg, traits, weights
}

func evaluationJSON(dim model.TraitDimension, score float64) string {
	return fmt.Sprintf(`{"grit_item": %d, "score": %v, "comment": "fine"}`, dim, score)
}
