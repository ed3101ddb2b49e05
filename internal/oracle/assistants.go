package oracle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"gritinterview/internal/config"
	"gritinterview/internal/model"
)

// AssistantsOracle runs jobs as OpenAI Assistants v2 thread runs
type AssistantsOracle struct {
	client     openai.Client
	assistants map[model.JobKind]string
}

// NewAssistantsOracle creates an oracle backed by the Assistants API
func NewAssistantsOracle(cfg *config.AIConfig) *AssistantsOracle {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.OpenAIKey),
		// single round trips only; the poller owns the overall deadline
		option.WithRequestTimeout(15 * time.Second),
		option.WithMaxRetries(1),
	}
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.OpenAIBaseURL))
	}

	return &AssistantsOracle{
		client: openai.NewClient(opts...),
		assistants: map[model.JobKind]string{
			model.JobGenerate:  cfg.Assistants.Question,
			model.JobEvaluate:  cfg.Assistants.Eval,
			model.JobSummarize: cfg.Assistants.Summary,
		},
	}
}

// Submit appends the input to a thread (created when req.ContextID is empty) and starts a run
func (o *AssistantsOracle) Submit(ctx context.Context, req Request) (*model.AsyncJob, error) {
	assistantID := o.assistants[req.Kind]
	if assistantID == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, req.Kind)
	}

	threadID := req.ContextID
	if threadID == "" {
		thread, err := o.client.Beta.Threads.New(ctx, openai.BetaThreadNewParams{})
		if err != nil {
			return nil, fmt.Errorf("create thread: %w", apiError(err))
		}
		threadID = thread.ID
	}

	_, err := o.client.Beta.Threads.Messages.New(ctx, threadID, openai.BetaThreadMessageNewParams{
		Role: openai.BetaThreadMessageNewParamsRoleUser,
		Content: openai.BetaThreadMessageNewParamsContentUnion{
			OfString: openai.String(req.Input),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("add message: %w", apiError(err))
	}

	params := openai.BetaThreadRunNewParams{AssistantID: assistantID}
	if req.Instructions != "" {
		params.AdditionalInstructions = openai.String(req.Instructions)
	}
	run, err := o.client.Beta.Threads.Runs.New(ctx, threadID, params)
	if err != nil {
		return nil, fmt.Errorf("create run: %w", apiError(err))
	}

	return &model.AsyncJob{
		ID:          run.ID,
		ContextID:   threadID,
		Kind:        req.Kind,
		Status:      mapRunStatus(run.Status),
		SubmittedAt: time.Now(),
	}, nil
}

// Status retrieves the run and maps its status
func (o *AssistantsOracle) Status(ctx context.Context, job *model.AsyncJob) (model.JobStatus, error) {
	run, err := o.client.Beta.Threads.Runs.Get(ctx, job.ContextID, job.ID)
	if err != nil {
		return "", fmt.Errorf("retrieve run: %w", apiError(err))
	}
	status := mapRunStatus(run.Status)
	if status == model.JobFailed && run.LastError.Message != "" {
		log.Printf("[Oracle] Run %s failed: %s %s", job.ID, run.LastError.Code, run.LastError.Message)
	}
	return status, nil
}

// Result returns the assistant text produced by the run
func (o *AssistantsOracle) Result(ctx context.Context, job *model.AsyncJob) (string, error) {
	page, err := o.client.Beta.Threads.Messages.List(ctx, job.ContextID, openai.BetaThreadMessageListParams{
		Order: openai.BetaThreadMessageListParamsOrderDesc,
		Limit: openai.Int(20),
		RunID: openai.String(job.ID),
	})
	if err != nil {
		return "", fmt.Errorf("list messages: %w", apiError(err))
	}

	var parts []string
	for _, m := range page.Data {
		if m.Role != openai.MessageRoleAssistant || (m.RunID != "" && m.RunID != job.ID) {
			continue
		}
		for _, c := range m.Content {
			if c.Type == "text" && c.Text.Value != "" {
				parts = append(parts, c.Text.Value)
			}
		}
		// newest first; the latest assistant message is the answer
		break
	}

	text := strings.TrimSpace(strings.Join(parts, "\n"))
	if text == "" {
		return "", ErrEmptyResult
	}
	return text, nil
}

// Cancel asks the service to stop the run
func (o *AssistantsOracle) Cancel(ctx context.Context, job *model.AsyncJob) error {
	if _, err := o.client.Beta.Threads.Runs.Cancel(ctx, job.ContextID, job.ID); err != nil {
		return fmt.Errorf("cancel run: %w", apiError(err))
	}
	return nil
}

func mapRunStatus(s openai.RunStatus) model.JobStatus {
	switch s {
	case openai.RunStatusQueued:
		return model.JobQueued
	case openai.RunStatusInProgress, openai.RunStatusCancelling, openai.RunStatusRequiresAction:
		return model.JobRunning
	case openai.RunStatusCompleted:
		return model.JobCompleted
	case openai.RunStatusCancelled:
		return model.JobCancelled
	case openai.RunStatusFailed, openai.RunStatusExpired, openai.RunStatusIncomplete:
		return model.JobFailed
	}
	// unknown statuses count as running until the poller's ceiling
	return model.JobRunning
}

// apiError shortens SDK errors to the status and message the API returned
func apiError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return fmt.Errorf("openai: %d %s", apiErr.StatusCode, apiErr.Message)
	}
	return err
}
