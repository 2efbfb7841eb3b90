package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"triage_server/core/domain"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapCache struct {
	values map[string][]byte
	ttls   map[string]time.Duration
	err    error
}

func newMapCache() *mapCache {
	return &mapCache{values: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *mapCache) SetJSON(_ context.Context, key string, value any, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.values[key] = data
	m.ttls[key] = ttl
	return nil
}

func (m *mapCache) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	data, ok := m.values[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func TestJobStoreRoundTrip(t *testing.T) {
	c := newMapCache()
	store := NewJobStore(c, 10*time.Minute)
	id := uuid.New()

	require.NoError(t, store.SaveResult(context.Background(), &domain.JobResult{
		JobID:  id,
		Status: domain.JobStatusFailed,
		Error:  "boom",
	}))

	key := "job:" + id.String()
	assert.Contains(t, c.values, key)
	assert.Equal(t, 10*time.Minute, c.ttls[key])

	got, err := store.GetResult(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.JobID)
	assert.Equal(t, domain.JobStatusFailed, got.Status)
	assert.Equal(t, "boom", got.Error)
}

func TestJobStoreMissReturnsNil(t *testing.T) {
	store := NewJobStore(newMapCache(), time.Minute)

	got, err := store.GetResult(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestJobStoreDefaultTTL(t *testing.T) {
	c := newMapCache()
	store := NewJobStore(c, 0)
	id := uuid.New()

	require.NoError(t, store.SaveResult(context.Background(), &domain.JobResult{JobID: id}))
	assert.Equal(t, time.Hour, c.ttls["job:"+id.String()])
}

func TestJobStoreWrapsErrors(t *testing.T) {
	cause := errors.New("redis down")
	c := newMapCache()
	c.err = cause
	store := NewJobStore(c, time.Minute)
	id := uuid.New()

	err := store.SaveResult(context.Background(), &domain.JobResult{JobID: id})
	assert.ErrorIs(t, err, cause)
	assert.ErrorContains(t, err, id.String())

	_, err = store.GetResult(context.Background(), id)
	assert.ErrorIs(t, err, cause)
}
