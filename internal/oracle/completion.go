package oracle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"gritinterview/internal/config"
	"gritinterview/internal/model"
)

// CompletionFunc performs one blocking single-shot completion
type CompletionFunc func(ctx context.Context, req Request) (string, error)

type completionJob struct {
	status model.JobStatus
	text   string
	cancel context.CancelFunc
}

// CompletionOracle adapts a single-shot completion API to the job contract.
// Each job runs in its own goroutine bounded by the job timeout.
type CompletionOracle struct {
	complete CompletionFunc
	timeout  time.Duration

	mu   sync.Mutex
	jobs map[string]*completionJob
}

// NewCompletionOracle wraps complete; jobs are aborted after timeout
func NewCompletionOracle(complete CompletionFunc, timeout time.Duration) *CompletionOracle {
	return &CompletionOracle{
		complete: complete,
		timeout:  timeout,
		jobs:     make(map[string]*completionJob),
	}
}

// Submit starts the completion in the background and returns immediately
func (o *CompletionOracle) Submit(ctx context.Context, req Request) (*model.AsyncJob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	contextID := req.ContextID
	if contextID == "" {
		contextID = "ctx_" + uuid.New().String()
	}
	job := &model.AsyncJob{
		ID:          "job_" + uuid.New().String(),
		ContextID:   contextID,
		Kind:        req.Kind,
		Status:      model.JobQueued,
		SubmittedAt: time.Now(),
	}

	jobCtx, cancel := context.WithTimeout(context.Background(), o.timeout)
	entry := &completionJob{status: model.JobQueued, cancel: cancel}

	o.mu.Lock()
	o.jobs[job.ID] = entry
	o.mu.Unlock()

	go o.run(jobCtx, job.ID, entry, req)
	return job, nil
}

func (o *CompletionOracle) run(ctx context.Context, id string, entry *completionJob, req Request) {
	defer entry.cancel()

	o.mu.Lock()
	if entry.status != model.JobQueued {
		o.mu.Unlock()
		return
	}
	entry.status = model.JobRunning
	o.mu.Unlock()

	text, err := o.complete(ctx, req)

	o.mu.Lock()
	defer o.mu.Unlock()
	if entry.status == model.JobCancelled {
		return
	}
	switch {
	case errors.Is(err, context.Canceled):
		entry.status = model.JobCancelled
	case err != nil:
		log.Printf("[Oracle] Completion job %s (%s) failed: %v", id, req.Kind, err)
		entry.status = model.JobFailed
	default:
		entry.status = model.JobCompleted
		entry.text = text
	}
}

// Status reports the job status. Failed and cancelled jobs are forgotten once reported.
func (o *CompletionOracle) Status(ctx context.Context, job *model.AsyncJob) (model.JobStatus, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	entry, ok := o.jobs[job.ID]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownJob, job.ID)
	}
	if entry.status == model.JobFailed || entry.status == model.JobCancelled {
		delete(o.jobs, job.ID)
	}
	return entry.status, nil
}

// Result returns the completion text and forgets the job
func (o *CompletionOracle) Result(ctx context.Context, job *model.AsyncJob) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	entry, ok := o.jobs[job.ID]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownJob, job.ID)
	}
	if entry.status != model.JobCompleted {
		return "", fmt.Errorf("%w: %s is %s", ErrJobNotDone, job.ID, entry.status)
	}
	delete(o.jobs, job.ID)

	if strings.TrimSpace(entry.text) == "" {
		return "", ErrEmptyResult
	}
	return entry.text, nil
}

// Cancel aborts the running completion and forgets the job
func (o *CompletionOracle) Cancel(ctx context.Context, job *model.AsyncJob) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	entry, ok := o.jobs[job.ID]
	if !ok {
		return nil
	}
	entry.status = model.JobCancelled
	entry.cancel()
	delete(o.jobs, job.ID)
	return nil
}

// Pending returns the number of jobs still tracked
func (o *CompletionOracle) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.jobs)
}

// NewGeminiOracle binds a CompletionOracle to the Gemini API
func NewGeminiOracle(ctx context.Context, cfg *config.AIConfig) (*CompletionOracle, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	modelName := cfg.GeminiModel
	complete := func(ctx context.Context, req Request) (string, error) {
		temp := float32(0.7)
		gc := &genai.GenerateContentConfig{
			Temperature: &temp,
		}
		if req.Instructions != "" {
			gc.SystemInstruction = genai.NewContentFromText(req.Instructions, genai.RoleUser)
		}
		if req.Kind == model.JobEvaluate || req.Kind == model.JobSummarize {
			gc.ResponseMIMEType = "application/json"
		}

		contents := []*genai.Content{genai.NewContentFromText(req.Input, genai.RoleUser)}
		res, err := client.Models.GenerateContent(ctx, modelName, contents, gc)
		if err != nil {
			return "", fmt.Errorf("gemini generate content: %w", err)
		}
		return res.Text(), nil
	}

	return NewCompletionOracle(complete, cfg.JobTimeout), nil
}
