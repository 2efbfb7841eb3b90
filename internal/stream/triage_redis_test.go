package stream

import (
	"context"
	"testing"
	"time"

	"triage_server/core/domain"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unreachableClient points at a closed port so every command fails fast.
func unreachableClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNewRedisStreamDefaultGroup(t *testing.T) {
	assert.Equal(t, GroupWorkers, NewRedisStream(nil, "").group)
	assert.Equal(t, "custom", NewRedisStream(nil, "custom").group)
}

func TestPublishRejectsUnencodableData(t *testing.T) {
	s := NewRedisStream(nil, "")

	_, err := s.Publish(context.Background(), StreamJobs, make(chan int))
	assert.Error(t, err)
}

func TestProducerSurfacesRedisErrors(t *testing.T) {
	p := NewProducer(NewRedisStream(unreachableClient(t), ""))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.Error(t, p.Publish(ctx, domain.NewJob("texto", false)))
	assert.Error(t, p.EnsureGroup(ctx))

	_, err := p.Depth(ctx)
	assert.Error(t, err)
}
