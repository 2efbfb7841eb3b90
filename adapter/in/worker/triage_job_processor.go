// Package worker processes queued triage jobs.
package worker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"triage_server/adapter/out/messaging"
	"triage_server/core/domain"
	"triage_server/core/port/in"
	"triage_server/core/port/out"
	"triage_server/pkg/apperr"
	"triage_server/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultJobTimeout bounds a single job, remote calls included.
const DefaultJobTimeout = 2 * time.Minute

// JobProcessor runs triage for jobs read from the stream and stores their
// results.
type JobProcessor struct {
	triage   in.TriageService
	store    out.JobStore
	workerID string
	timeout  time.Duration
	log      zerolog.Logger
}

var (
	_ messaging.JobHandler        = (*JobProcessor)(nil)
	_ messaging.DeadLetterHandler = (*JobProcessor)(nil)
)

func NewJobProcessor(triage in.TriageService, store out.JobStore, workerID string, log zerolog.Logger) *JobProcessor {
	return &JobProcessor{
		triage:   triage,
		store:    store,
		workerID: workerID,
		timeout:  DefaultJobTimeout,
		log:      log.With().Str("component", "job_processor").Logger(),
	}
}

// Handle processes one message. Undecodable payloads are dropped; a failed
// triage is stored as a failed result. Storage errors and cancellation are
// returned so the message stays pending and is retried.
func (p *JobProcessor) Handle(ctx context.Context, stream string, data []byte) error {
	var job domain.Job
	if err := json.Unmarshal(data, &job); err != nil {
		p.log.Error().Err(err).Str("stream", stream).Msg("dropping undecodable job")
		return nil
	}

	ctx = context.WithValue(ctx, logger.JobIDKey, job.ID.String())
	start := time.Now()

	jobCtx, cancel := context.WithTimeout(ctx, p.timeout)
	analysis, err := p.triage.Analyze(jobCtx, &in.AnalyzeRequest{Text: job.Text, HeuristicOnly: job.HeuristicOnly})
	cancel()

	if err != nil && errors.Is(err, context.Canceled) {
		return fmt.Errorf("job %s: %w", job.ID, err)
	}

	var result *domain.JobResult
	if err != nil {
		appErr := jobError(err)
		result = p.failed(job.ID, appErr)
		p.log.Warn().Err(err).Str("job_id", job.ID.String()).Str("code", appErr.Code).Msg("job failed")
	} else {
		result = &domain.JobResult{
			JobID:    job.ID,
			Status:   domain.JobStatusCompleted,
			Analysis: analysis,
			WorkerID: p.workerID,
		}
	}
	result.CompletedAt = time.Now().UTC()

	if err := p.store.SaveResult(ctx, result); err != nil {
		return fmt.Errorf("store result for job %s: %w", job.ID, err)
	}

	p.log.Info().
		Str("job_id", job.ID.String()).
		Str("status", string(result.Status)).
		Dur("elapsed", time.Since(start)).
		Msg("job processed")
	return nil
}

// HandleDeadLetter records a failed result for a job that ran out of
// deliveries, so pollers stop seeing it as pending.
func (p *JobProcessor) HandleDeadLetter(ctx context.Context, stream string, data []byte) error {
	var job domain.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return fmt.Errorf("decode dead-lettered job: %w", err)
	}

	appErr := apperr.New(apperr.CodeDeadLettered, "job exceeded its delivery attempts", http.StatusInternalServerError)
	result := p.failed(job.ID, appErr)
	result.CompletedAt = time.Now().UTC()

	if err := p.store.SaveResult(ctx, result); err != nil {
		return fmt.Errorf("store dead-letter result for job %s: %w", job.ID, err)
	}
	p.log.Warn().Str("job_id", job.ID.String()).Str("stream", stream).Msg("job dead-lettered")
	return nil
}

func (p *JobProcessor) failed(id uuid.UUID, appErr *apperr.AppError) *domain.JobResult {
	return &domain.JobResult{
		JobID:     id,
		Status:    domain.JobStatusFailed,
		Error:     appErr.Message,
		ErrorCode: appErr.Code,
		WorkerID:  p.workerID,
	}
}

func jobError(err error) *apperr.AppError {
	if errors.Is(err, context.DeadlineExceeded) && !apperr.IsAppError(err) {
		return apperr.Timeout("triage job").WithError(err)
	}
	return apperr.AsAppError(err)
}
