package service

import (
	"errors"
	"fmt"

	"gritinterview/internal/model"
)

// Job failures
var (
	ErrJobTimeout   = errors.New("job timed out")
	ErrJobFailed    = errors.New("job failed")
	ErrJobCancelled = errors.New("job cancelled")
)

// Evaluation and lifecycle errors
var (
	ErrMalformedEvaluation  = errors.New("malformed evaluation")
	ErrSessionIncomplete    = errors.New("session is not complete")
	ErrNoWeightedDimensions = errors.New("no weighted dimensions among score records")
	ErrEmptyQuestion        = errors.New("question generation returned no text")

	ErrSessionNotFound = errors.New("session not found")
	ErrSessionComplete = errors.New("session is complete")
	ErrSessionBusy     = errors.New("session is busy with another request")
	ErrTurnMismatch    = errors.New("answer does not match the current turn")
	ErrEmptyAnswer     = errors.New("answer is empty")
)

// JobError describes an async job that did not complete
type JobError struct {
	JobID      string
	Kind       model.JobKind
	LastStatus model.JobStatus
	Err        error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("%s job %s (last status %s): %v", e.Kind, e.JobID, e.LastStatus, e.Err)
}

func (e *JobError) Unwrap() error {
	return e.Err
}
