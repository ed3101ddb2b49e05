package model

import "time"

// JobStatus is the lifecycle status of an external reasoning job
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
	JobCancelled JobStatus = "cancelled"
)

// IsTerminal reports whether no further status change is expected
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobCompleted, JobFailed, JobCancelled:
		return true
	}
	return false
}

// JobKind selects which oracle capability a job exercises
type JobKind string

const (
	JobGenerate  JobKind = "generate"
	JobEvaluate  JobKind = "evaluate"
	JobSummarize JobKind = "summarize"
)

// AsyncJob is a unit of work submitted to the external reasoning service
type AsyncJob struct {
	ID          string    `json:"id"`
	ContextID   string    `json:"contextId"`
	Kind        JobKind   `json:"kind"`
	Status      JobStatus `json:"status"`
	SubmittedAt time.Time `json:"submittedAt"`
}
