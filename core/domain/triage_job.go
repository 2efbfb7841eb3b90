package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of an asynchronous triage job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Job is a queued triage request.
type Job struct {
	ID            uuid.UUID `json:"id"`
	Text          string    `json:"text"`
	HeuristicOnly bool      `json:"heuristic_only,omitempty"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// NewJob creates a job with a fresh id.
func NewJob(text string, heuristicOnly bool) *Job {
	return &Job{
		ID:            uuid.New(),
		Text:          text,
		HeuristicOnly: heuristicOnly,
		SubmittedAt:   time.Now().UTC(),
	}
}

// PendingResult is stored when a job is accepted so that polling can tell a
// queued job from an unknown id.
func PendingResult(job *Job) *JobResult {
	return &JobResult{JobID: job.ID, Status: JobStatusPending}
}

// JobResult is the stored outcome of a job.
type JobResult struct {
	JobID       uuid.UUID `json:"job_id"`
	Status      JobStatus `json:"status"`
	Analysis    *Analysis `json:"analysis,omitempty"`
	Error       string    `json:"error,omitempty"`
	ErrorCode   string    `json:"error_code,omitempty"`
	WorkerID    string    `json:"worker_id,omitempty"`
	CompletedAt time.Time `json:"completed_at,omitempty"`
}
