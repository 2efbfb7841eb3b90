package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"triage_server/core/domain"
	"triage_server/core/port/in"
	"triage_server/pkg/apperr"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTriage struct {
	err error
}

func (f fakeTriage) Analyze(_ context.Context, req *in.AnalyzeRequest) (*domain.Analysis, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Analysis{
		Result:  domain.ClassificationResult{Category: domain.CategoryImprodutivo, Confidence: 0.9, Source: domain.SourceHeuristic},
		Reply:   "ok",
		Content: req.Text,
	}, nil
}

func (f fakeTriage) AnalyzeUpload(context.Context, *in.UploadRequest) (*domain.Analysis, error) {
	return nil, errors.New("not used")
}

type memoryStore struct {
	mu      sync.Mutex
	results map[uuid.UUID]*domain.JobResult
	err     error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{results: map[uuid.UUID]*domain.JobResult{}}
}

func (m *memoryStore) SaveResult(_ context.Context, r *domain.JobResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.results[r.JobID] = r
	return nil
}

func (m *memoryStore) GetResult(_ context.Context, id uuid.UUID) (*domain.JobResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.results[id], nil
}

func encode(t *testing.T, job *domain.Job) []byte {
	t.Helper()
	data, err := json.Marshal(job)
	require.NoError(t, err)
	return data
}

func TestHandleStoresCompletedResult(t *testing.T) {
	store := newMemoryStore()
	p := NewJobProcessor(fakeTriage{}, store, "w-1", zerolog.Nop())
	job := domain.NewJob("obrigado", false)

	require.NoError(t, p.Handle(context.Background(), "triage:jobs", encode(t, job)))

	got := store.results[job.ID]
	require.NotNil(t, got)
	assert.Equal(t, domain.JobStatusCompleted, got.Status)
	assert.Equal(t, "w-1", got.WorkerID)
	require.NotNil(t, got.Analysis)
	assert.Equal(t, domain.CategoryImprodutivo, got.Analysis.Result.Category)
	assert.False(t, got.CompletedAt.IsZero())
}

func TestHandleStoresFailedResult(t *testing.T) {
	store := newMemoryStore()
	p := NewJobProcessor(fakeTriage{err: apperr.MissingField("text")}, store, "w-1", zerolog.Nop())
	job := domain.NewJob("", false)

	require.NoError(t, p.Handle(context.Background(), "triage:jobs", encode(t, job)))

	got := store.results[job.ID]
	require.NotNil(t, got)
	assert.Equal(t, domain.JobStatusFailed, got.Status)
	assert.Contains(t, got.Error, "text")
	assert.Nil(t, got.Analysis)
}

func TestHandleDropsUndecodablePayload(t *testing.T) {
	store := newMemoryStore()
	p := NewJobProcessor(fakeTriage{}, store, "w-1", zerolog.Nop())

	assert.NoError(t, p.Handle(context.Background(), "triage:jobs", []byte("{not json")))
	assert.Empty(t, store.results)
}

func TestHandleReturnsStoreErrors(t *testing.T) {
	store := newMemoryStore()
	store.err = errors.New("redis down")
	p := NewJobProcessor(fakeTriage{}, store, "w-1", zerolog.Nop())

	err := p.Handle(context.Background(), "triage:jobs", encode(t, domain.NewJob("x", true)))
	assert.ErrorContains(t, err, "redis down")
}

func TestHandleMapsDeadlineToTimeout(t *testing.T) {
	store := newMemoryStore()
	err := fmt.Errorf("analyze: %w", context.DeadlineExceeded)
	p := NewJobProcessor(fakeTriage{err: err}, store, "w-1", zerolog.Nop())
	job := domain.NewJob("texto", false)

	require.NoError(t, p.Handle(context.Background(), "triage:jobs", encode(t, job)))

	got := store.results[job.ID]
	require.NotNil(t, got)
	assert.Equal(t, domain.JobStatusFailed, got.Status)
	assert.Equal(t, apperr.CodeTimeout, got.ErrorCode)
	assert.Contains(t, got.Error, "timed out")
}

func TestHandleRecordsErrorCode(t *testing.T) {
	store := newMemoryStore()
	p := NewJobProcessor(fakeTriage{err: errors.New("boom")}, store, "w-1", zerolog.Nop())
	job := domain.NewJob("texto", false)

	require.NoError(t, p.Handle(context.Background(), "triage:jobs", encode(t, job)))
	assert.Equal(t, apperr.CodeInternalError, store.results[job.ID].ErrorCode)
}

func TestHandleLeavesCancelledJobPending(t *testing.T) {
	store := newMemoryStore()
	p := NewJobProcessor(fakeTriage{err: context.Canceled}, store, "w-1", zerolog.Nop())
	job := domain.NewJob("texto", false)

	err := p.Handle(context.Background(), "triage:jobs", encode(t, job))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, store.results)
}

func TestHandleDeadLetterStoresFailedResult(t *testing.T) {
	store := newMemoryStore()
	p := NewJobProcessor(fakeTriage{}, store, "w-2", zerolog.Nop())
	job := domain.NewJob("texto", false)

	require.NoError(t, p.HandleDeadLetter(context.Background(), "triage:jobs", encode(t, job)))

	got := store.results[job.ID]
	require.NotNil(t, got)
	assert.Equal(t, domain.JobStatusFailed, got.Status)
	assert.Equal(t, apperr.CodeDeadLettered, got.ErrorCode)
	assert.Equal(t, "w-2", got.WorkerID)

	assert.Error(t, p.HandleDeadLetter(context.Background(), "triage:jobs", []byte("{")))
}
