package service

import (
	"context"
	"errors"
	"log"
	"time"

	"gritinterview/internal/model"
	"gritinterview/internal/oracle"
)

const cancelGrace = 5 * time.Second

// JobPoller drives one oracle job from submission to a terminal state
type JobPoller struct {
	oracle       oracle.Oracle
	pollInterval time.Duration
	jobTimeout   time.Duration
}

// NewJobPoller creates a poller. Both durations must be positive.
func NewJobPoller(o oracle.Oracle, pollInterval, jobTimeout time.Duration) *JobPoller {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	if jobTimeout <= 0 {
		jobTimeout = 60 * time.Second
	}
	return &JobPoller{
		oracle:       o,
		pollInterval: pollInterval,
		jobTimeout:   jobTimeout,
	}
}

// JobTimeout returns the per-job ceiling
func (p *JobPoller) JobTimeout() time.Duration {
	return p.jobTimeout
}

// RunJob submits req and waits for its text output.
// The wait loop belongs to this call and ends with it.
func (p *JobPoller) RunJob(ctx context.Context, req oracle.Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.jobTimeout)
	defer cancel()

	job, err := p.oracle.Submit(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() != nil {
			return "", &JobError{Kind: req.Kind, LastStatus: model.JobQueued, Err: ErrJobTimeout}
		}
		return "", err
	}
	log.Printf("[JobPoller] Submitted %s job %s (context %s)", job.Kind, job.ID, job.ContextID)

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", p.interrupted(ctx, job)
		case <-ticker.C:
		}

		status, err := p.oracle.Status(ctx, job)
		if err != nil {
			if ctx.Err() != nil {
				return "", p.interrupted(ctx, job)
			}
			return "", err
		}
		job.Status = status

		switch status {
		case model.JobCompleted:
			text, err := p.oracle.Result(ctx, job)
			if err != nil {
				return "", err
			}
			log.Printf("[JobPoller] %s job %s completed in %s", job.Kind, job.ID, time.Since(job.SubmittedAt).Round(time.Millisecond))
			return text, nil
		case model.JobFailed:
			log.Printf("[JobPoller] %s job %s failed", job.Kind, job.ID)
			return "", &JobError{JobID: job.ID, Kind: job.Kind, LastStatus: status, Err: ErrJobFailed}
		case model.JobCancelled:
			log.Printf("[JobPoller] %s job %s cancelled", job.Kind, job.ID)
			return "", &JobError{JobID: job.ID, Kind: job.Kind, LastStatus: status, Err: ErrJobCancelled}
		}
	}
}

// interrupted cancels the job and reports why the wait ended early
func (p *JobPoller) interrupted(ctx context.Context, job *model.AsyncJob) error {
	p.abandon(job)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		log.Printf("[JobPoller] %s job %s timed out after %s", job.Kind, job.ID, p.jobTimeout)
		return &JobError{JobID: job.ID, Kind: job.Kind, LastStatus: job.Status, Err: ErrJobTimeout}
	}
	return ctx.Err()
}

// abandon asks the oracle to stop a job the caller no longer waits for
func (p *JobPoller) abandon(job *model.AsyncJob) {
	ctx, cancel := context.WithTimeout(context.Background(), cancelGrace)
	defer cancel()
	if err := p.oracle.Cancel(ctx, job); err != nil {
		log.Printf("[JobPoller] Failed to cancel %s job %s: %v", job.Kind, job.ID, err)
	}
}
