package http

import (
	"strings"

	"triage_server/core/domain"
	"triage_server/core/port/out"
	"triage_server/pkg/apperr"
	"triage_server/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// JobHandler submits and polls asynchronous triage jobs.
type JobHandler struct {
	queue out.JobQueue
	store out.JobStore
}

func NewJobHandler(queue out.JobQueue, store out.JobStore) *JobHandler {
	return &JobHandler{queue: queue, store: store}
}

func (h *JobHandler) Register(api fiber.Router, guard ...fiber.Handler) {
	jobs := api.Group("/jobs")
	jobs.Post("/", chain(guard, h.Submit)...)
	jobs.Get("/:id", h.Get)
}

// Submit stores a pending result before publishing so that polling can tell
// an accepted job from an unknown id.
func (h *JobHandler) Submit(c *fiber.Ctx) error {
	if h.queue == nil || h.store == nil {
		return apperr.Unavailable("jobs")
	}

	req, err := parseAnalyzeRequest(c)
	if err != nil {
		return err
	}
	if strings.TrimSpace(req.Text) == "" {
		return apperr.MissingField("text")
	}

	ctx := c.UserContext()
	job := domain.NewJob(req.Text, req.HeuristicOnly)
	if err := h.store.SaveResult(ctx, domain.PendingResult(job)); err != nil {
		return apperr.QueueError("store pending", err)
	}
	if err := h.queue.Publish(ctx, job); err != nil {
		appErr := apperr.QueueError("publish", err)
		failed := &domain.JobResult{JobID: job.ID, Status: domain.JobStatusFailed, Error: appErr.Message, ErrorCode: appErr.Code}
		_ = h.store.SaveResult(ctx, failed)
		return appErr
	}

	return response.Accepted(c, fiber.Map{
		"job_id":       job.ID,
		"status":       domain.JobStatusPending,
		"submitted_at": job.SubmittedAt,
	})
}

func (h *JobHandler) Get(c *fiber.Ctx) error {
	if h.store == nil {
		return apperr.Unavailable("jobs")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperr.InvalidInput("id", "must be a UUID")
	}

	result, err := h.store.GetResult(c.UserContext(), id)
	if err != nil {
		return apperr.ExternalError("job store", err)
	}
	if result == nil {
		return apperr.NotFound("job")
	}
	return response.OK(c, result)
}
