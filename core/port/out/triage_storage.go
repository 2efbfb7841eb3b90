package out

import (
	"context"
	"time"

	"triage_server/core/domain"

	"github.com/google/uuid"
)

// HistoryRepository persists classifications.
type HistoryRepository interface {
	Append(ctx context.Context, entry *domain.HistoryEntry) error
	Recent(ctx context.Context, limit int) ([]*domain.HistoryEntry, error)
	CountByCategory(ctx context.Context) ([]domain.CategoryStat, error)
}

// ResultCache stores raw remote replies by key.
type ResultCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// JobQueue publishes jobs for asynchronous processing.
type JobQueue interface {
	Publish(ctx context.Context, job *domain.Job) error
}

// JobStore holds job results until they expire.
type JobStore interface {
	SaveResult(ctx context.Context, result *domain.JobResult) error
	GetResult(ctx context.Context, id uuid.UUID) (*domain.JobResult, error)
}
