// Package cache adapts the Redis JSON cache to the storage ports.
package cache

import (
	"context"
	"fmt"
	"time"

	"triage_server/core/domain"
	"triage_server/core/port/out"
	"triage_server/pkg/cache"

	"github.com/google/uuid"
)

// KeyPrefix namespaces every key written by this service.
const KeyPrefix = "triage:"

// JSONCache is the part of the Redis cache the job store needs.
type JSONCache interface {
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
}

// JobStore keeps job results under "triage:job:<id>".
type JobStore struct {
	cache JSONCache
	ttl   time.Duration
}

var (
	_ out.JobStore = (*JobStore)(nil)
	_ JSONCache    = (*cache.RedisCache)(nil)
)

func NewJobStore(c JSONCache, ttl time.Duration) *JobStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &JobStore{cache: c, ttl: ttl}
}

func jobKey(id uuid.UUID) string {
	return "job:" + id.String()
}

func (s *JobStore) SaveResult(ctx context.Context, result *domain.JobResult) error {
	if err := s.cache.SetJSON(ctx, jobKey(result.JobID), result, s.ttl); err != nil {
		return fmt.Errorf("save job result %s: %w", result.JobID, err)
	}
	return nil
}

// GetResult returns nil, nil when no result has been stored yet.
func (s *JobStore) GetResult(ctx context.Context, id uuid.UUID) (*domain.JobResult, error) {
	var result domain.JobResult
	ok, err := s.cache.GetJSON(ctx, jobKey(id), &result)
	if err != nil {
		return nil, fmt.Errorf("get job result %s: %w", id, err)
	}
	if !ok {
		return nil, nil
	}
	return &result, nil
}
