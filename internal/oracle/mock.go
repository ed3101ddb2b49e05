package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"gritinterview/internal/model"
)

var mockQuestions = map[model.TraitDimension]string{
	1:  "When something pulls your attention away from important work, how do you get back on track?",
	2:  "Which interest have you kept up for years, and what keeps it alive for you?",
	3:  "Tell me about a long-term goal you set. How did you break it down?",
	4:  "Describe a setback that hit you hard. What did you do in the days after?",
	5:  "When a plan stopped working, how did you change your approach?",
	6:  "What is something you do even when nobody notices or rewards it?",
	7:  "When were you last so absorbed in a task that you lost track of time?",
	8:  "How do you handle a task that feels too difficult at first?",
	9:  "Tell me about something you finished only because you refused to give up.",
	10: "What is a skill you improved through repeated practice and feedback?",
	11: "How do you make sure the projects you start actually get finished?",
	12: "How do you keep your motivation when progress is slow?",
}

type mockJob struct {
	req   Request
	polls int
}

// MockOracle is an offline, deterministic oracle. Evaluations are scored from answer length.
type MockOracle struct {
	// RunningPolls is how many status calls report Running before Completed
	RunningPolls int

	mu   sync.Mutex
	jobs map[string]*mockJob
}

// NewMockOracle creates a mock oracle
func NewMockOracle(runningPolls int) *MockOracle {
	return &MockOracle{
		RunningPolls: runningPolls,
		jobs:         make(map[string]*mockJob),
	}
}

// Submit records the request
func (o *MockOracle) Submit(ctx context.Context, req Request) (*model.AsyncJob, error) {
	contextID := req.ContextID
	if contextID == "" {
		contextID = "mock_ctx_" + uuid.New().String()[:8]
	}
	job := &model.AsyncJob{
		ID:          "mock_job_" + uuid.New().String()[:8],
		ContextID:   contextID,
		Kind:        req.Kind,
		Status:      model.JobQueued,
		SubmittedAt: time.Now(),
	}

	o.mu.Lock()
	o.jobs[job.ID] = &mockJob{req: req}
	o.mu.Unlock()
	return job, nil
}

// Status reports Running for the configured number of polls, then Completed
func (o *MockOracle) Status(ctx context.Context, job *model.AsyncJob) (model.JobStatus, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	j, ok := o.jobs[job.ID]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownJob, job.ID)
	}
	j.polls++
	if j.polls <= o.RunningPolls {
		return model.JobRunning, nil
	}
	return model.JobCompleted, nil
}

// Result returns canned output for the job kind
func (o *MockOracle) Result(ctx context.Context, job *model.AsyncJob) (string, error) {
	o.mu.Lock()
	j, ok := o.jobs[job.ID]
	delete(o.jobs, job.ID)
	o.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownJob, job.ID)
	}

	switch j.req.Kind {
	case model.JobGenerate:
		q, ok := mockQuestions[j.req.Trait]
		if !ok {
			q = "Could you tell me more about that?"
		}
		return "Thank you for sharing that. " + q, nil
	case model.JobEvaluate:
		return mockEvaluation(j.req), nil
	case model.JobSummarize:
		out, _ := json.Marshal(map[string]string{
			"summary": "Mock summary: the respondent described steady effort across the interview. Enable an oracle backend for a real narrative.",
		})
		return string(out), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKind, j.req.Kind)
}

// Cancel forgets the job
func (o *MockOracle) Cancel(ctx context.Context, job *model.AsyncJob) error {
	o.mu.Lock()
	delete(o.jobs, job.ID)
	o.mu.Unlock()
	return nil
}

func mockEvaluation(req Request) string {
	wordCount := len(strings.Fields(req.Answer))
	score := 1 + wordCount/10
	if score > 5 {
		score = 5
	}

	out, _ := json.Marshal(map[string]interface{}{
		"grit_item": int(req.Trait),
		"score":     score,
		"comment":   "Mock evaluation based on response length.",
	})
	return string(out)
}
