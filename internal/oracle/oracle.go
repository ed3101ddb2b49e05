// Package oracle adapts external reasoning services to one submit/poll/fetch job contract.
package oracle

import (
	"context"
	"errors"

	"gritinterview/internal/config"
	"gritinterview/internal/model"
)

var (
	ErrUnknownJob  = errors.New("unknown job")
	ErrJobNotDone  = errors.New("job has not completed")
	ErrEmptyResult = errors.New("job completed without text output")
	ErrUnknownKind = errors.New("no assistant configured for job kind")
)

// Request is one unit of work for the reasoning service
type Request struct {
	Kind model.JobKind
	// ContextID continues an existing conversation context; empty starts a fresh one
	ContextID    string
	Instructions string
	Input        string
	// Trait is the target dimension for generate and evaluate jobs, zero otherwise
	Trait model.TraitDimension
	// Answer is the raw respondent text of an evaluate job; Input already embeds it
	Answer string
}

// Oracle is the external reasoning service seen as asynchronous jobs
type Oracle interface {
	Submit(ctx context.Context, req Request) (*model.AsyncJob, error)
	Status(ctx context.Context, job *model.AsyncJob) (model.JobStatus, error)
	Result(ctx context.Context, job *model.AsyncJob) (string, error)
	Cancel(ctx context.Context, job *model.AsyncJob) error
}

// New builds the oracle for the configured backend, falling back to the mock without credentials
func New(ctx context.Context, cfg *config.AIConfig) (Oracle, error) {
	switch cfg.EffectiveBackend() {
	case config.BackendAssistants:
		return NewAssistantsOracle(cfg), nil
	case config.BackendGemini:
		return NewGeminiOracle(ctx, cfg)
	}
	return NewMockOracle(1), nil
}
