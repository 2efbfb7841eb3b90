package stream

import (
	"context"
	"strings"

	"triage_server/core/domain"
	"triage_server/core/port/out"

	"github.com/goccy/go-json"

	"github.com/redis/go-redis/v9"
)

const (
	StreamJobs   = "triage:jobs"
	GroupWorkers = "triage-workers"
)

type RedisStream struct {
	client *redis.Client
	group  string
}

func NewRedisStream(client *redis.Client, group string) *RedisStream {
	if group == "" {
		group = GroupWorkers
	}
	return &RedisStream{
		client: client,
		group:  group,
	}
}

func (s *RedisStream) CreateGroup(ctx context.Context, stream string) error {
	err := s.client.XGroupCreateMkStream(ctx, stream, s.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

func (s *RedisStream) Publish(ctx context.Context, stream string, data any) (string, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return "", err
	}

	return s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{"data": jsonData},
	}).Result()
}

func (s *RedisStream) Pending(ctx context.Context, stream string) (int64, error) {
	info, err := s.client.XPending(ctx, stream, s.group).Result()
	if err != nil {
		return 0, err
	}
	return info.Count, nil
}

// Producer publishes triage jobs on the jobs stream.
type Producer struct {
	stream *RedisStream
}

var _ out.JobQueue = (*Producer)(nil)

func NewProducer(stream *RedisStream) *Producer {
	return &Producer{stream: stream}
}

func (p *Producer) Publish(ctx context.Context, job *domain.Job) error {
	_, err := p.stream.Publish(ctx, StreamJobs, job)
	return err
}

// EnsureGroup creates the jobs stream and worker group so jobs published
// before the first worker starts are still delivered.
func (p *Producer) EnsureGroup(ctx context.Context) error {
	return p.stream.CreateGroup(ctx, StreamJobs)
}

// Depth returns the number of delivered but unacknowledged jobs.
func (p *Producer) Depth(ctx context.Context) (int64, error) {
	return p.stream.Pending(ctx, StreamJobs)
}
