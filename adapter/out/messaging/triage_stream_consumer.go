package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// JobHandler processes jobs from streams.
type JobHandler interface {
	Handle(ctx context.Context, stream string, data []byte) error
}

// DeadLetterHandler is implemented by handlers that want to record the
// outcome of a message moved to the dead-letter stream.
type DeadLetterHandler interface {
	HandleDeadLetter(ctx context.Context, stream string, data []byte) error
}

// Consumer consumes messages from Redis Streams.
type Consumer struct {
	client      *redis.Client
	group       string
	consumer    string
	streams     []string
	handler     JobHandler
	log         zerolog.Logger
	concurrency int
	batchSize   int64

	pendingCheckInterval time.Duration // how often stuck messages are looked for
	pendingIdleTime      time.Duration // idle time after which a pending message is reclaimed
	maxRetries           int           // deliveries before a message goes to the DLQ
}

// ConsumerConfig holds consumer configuration.
type ConsumerConfig struct {
	Group       string
	Consumer    string
	Streams     []string
	Handler     JobHandler
	Logger      zerolog.Logger
	Concurrency int // messages processed at once (default: 4)
	BatchSize   int // messages read per XREADGROUP (default: 10)

	PendingCheckInterval time.Duration
	PendingIdleTime      time.Duration
	MaxRetries           int
}

// NewConsumer creates a new Consumer.
func NewConsumer(client *redis.Client, cfg *ConsumerConfig) *Consumer {
	pendingCheckInterval := cfg.PendingCheckInterval
	if pendingCheckInterval == 0 {
		pendingCheckInterval = 30 * time.Second
	}

	pendingIdleTime := cfg.PendingIdleTime
	if pendingIdleTime == 0 {
		pendingIdleTime = 2 * time.Minute
	}

	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}

	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 4
	}

	batchSize := cfg.BatchSize
	if batchSize < 1 {
		batchSize = 10
	}

	return &Consumer{
		client:               client,
		group:                cfg.Group,
		consumer:             cfg.Consumer,
		streams:              cfg.Streams,
		handler:              cfg.Handler,
		log:                  cfg.Logger,
		concurrency:          concurrency,
		batchSize:            int64(batchSize),
		pendingCheckInterval: pendingCheckInterval,
		pendingIdleTime:      pendingIdleTime,
		maxRetries:           maxRetries,
	}
}

// Run starts consuming messages. It returns when ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	c.log.Info().
		Str("group", c.group).
		Str("consumer", c.consumer).
		Strs("streams", c.streams).
		Int("concurrency", c.concurrency).
		Msg("starting consumer")

	for _, stream := range c.streams {
		c.createConsumerGroup(ctx, stream)
	}

	go c.processPendingMessages(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		result, err := c.readMessages(ctx)
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			c.log.Error().Err(err).Msg("error reading from streams")
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range result {
			for _, id := range c.processBatch(ctx, stream.Stream, stream.Messages) {
				if err := c.client.XAck(ctx, stream.Stream, c.group, id).Err(); err != nil {
					c.log.Error().
						Err(err).
						Str("stream", stream.Stream).
						Str("id", id).
						Msg("error acknowledging message")
				}
			}
		}
	}
}

// processBatch handles messages with at most c.concurrency in flight and
// returns the ids that were processed successfully. Failed messages stay
// pending and are retried by the pending processor.
func (c *Consumer) processBatch(ctx context.Context, stream string, msgs []redis.XMessage) []string {
	var (
		mu   sync.Mutex
		done = make([]string, 0, len(msgs))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for _, msg := range msgs {
		msg := msg
		g.Go(func() error {
			if err := c.processMessage(gctx, stream, msg); err != nil {
				c.log.Error().
					Err(err).
					Str("stream", stream).
					Str("id", msg.ID).
					Msg("error processing message")
				return nil
			}
			mu.Lock()
			done = append(done, msg.ID)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return done
}

// processPendingMessages periodically checks and reprocesses stuck pending messages.
func (c *Consumer) processPendingMessages(ctx context.Context) {
	ticker := time.NewTicker(c.pendingCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.claimAndProcessPending(ctx)
		}
	}
}

// claimAndProcessPending claims stuck pending messages and reprocesses them.
func (c *Consumer) claimAndProcessPending(ctx context.Context) {
	for _, stream := range c.streams {
		pending, err := c.client.XPendingExt(ctx, &redis.XPendingExtArgs{
			Stream: stream,
			Group:  c.group,
			Start:  "-",
			End:    "+",
			Count:  100,
		}).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				c.log.Error().Err(err).Str("stream", stream).Msg("error getting pending messages")
			}
			continue
		}

		var ids []string
		for _, p := range pending {
			if p.Idle < c.pendingIdleTime {
				continue
			}

			if int(p.RetryCount) >= c.maxRetries {
				c.log.Warn().
					Str("stream", stream).
					Str("id", p.ID).
					Int64("retries", p.RetryCount).
					Msg("message exceeded max retries, moving to DLQ")

				msg, err := c.moveToDeadLetterQueue(ctx, stream, p.ID)
				if err != nil {
					c.log.Error().Err(err).Str("id", p.ID).Msg("error moving message to DLQ")
				} else {
					c.notifyDeadLetter(ctx, stream, msg)
				}
				c.client.XAck(ctx, stream, c.group, p.ID)
				continue
			}
			ids = append(ids, p.ID)
		}
		if len(ids) == 0 {
			continue
		}

		claimed, err := c.client.XClaim(ctx, &redis.XClaimArgs{
			Stream:   stream,
			Group:    c.group,
			Consumer: c.consumer,
			MinIdle:  c.pendingIdleTime,
			Messages: ids,
		}).Result()
		if err != nil {
			c.log.Error().Err(err).Str("stream", stream).Msg("error claiming messages")
			continue
		}

		for _, id := range c.processBatch(ctx, stream, claimed) {
			if err := c.client.XAck(ctx, stream, c.group, id).Err(); err != nil {
				c.log.Error().Err(err).Str("id", id).Msg("error acknowledging reprocessed message")
			}
		}
		c.log.Info().Str("stream", stream).Int("claimed", len(claimed)).Msg("reprocessed pending messages")
	}
}

// createConsumerGroup creates a consumer group if it doesn't exist.
func (c *Consumer) createConsumerGroup(ctx context.Context, stream string) {
	err := c.client.XGroupCreateMkStream(ctx, stream, c.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		c.log.Warn().Err(err).Str("stream", stream).Msg("error creating consumer group")
	}
}

// readMessages reads messages from all streams using XREADGROUP.
func (c *Consumer) readMessages(ctx context.Context) ([]redis.XStream, error) {
	if len(c.streams) == 0 {
		return nil, redis.Nil
	}

	args := make([]string, len(c.streams)*2)
	for i, stream := range c.streams {
		args[i] = stream
		args[len(c.streams)+i] = ">"
	}

	return c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.group,
		Consumer: c.consumer,
		Streams:  args,
		Count:    c.batchSize,
		Block:    5 * time.Second,
	}).Result()
}

// processMessage processes a single message.
func (c *Consumer) processMessage(ctx context.Context, stream string, msg redis.XMessage) error {
	data, err := messageData(msg)
	if err != nil {
		return err
	}
	return c.handler.Handle(ctx, stream, data)
}

func messageData(msg redis.XMessage) ([]byte, error) {
	data, ok := msg.Values["data"]
	if !ok {
		return nil, fmt.Errorf("invalid message format: missing data field")
	}

	dataStr, ok := data.(string)
	if !ok {
		return nil, fmt.Errorf("invalid message format: data is not a string")
	}
	return []byte(dataStr), nil
}

// notifyDeadLetter hands a dead-lettered message to the handler when it
// implements DeadLetterHandler. Failures are logged only.
func (c *Consumer) notifyDeadLetter(ctx context.Context, stream string, msg redis.XMessage) {
	dl, ok := c.handler.(DeadLetterHandler)
	if !ok {
		return
	}
	data, err := messageData(msg)
	if err == nil {
		err = dl.HandleDeadLetter(ctx, stream, data)
	}
	if err != nil {
		c.log.Error().Err(err).Str("stream", stream).Str("id", msg.ID).Msg("error recording dead-lettered message")
	}
}

// moveToDeadLetterQueue copies a failed message to the "dlq:<stream>" stream.
func (c *Consumer) moveToDeadLetterQueue(ctx context.Context, stream string, msgID string) (redis.XMessage, error) {
	messages, err := c.client.XRange(ctx, stream, msgID, msgID).Result()
	if err != nil {
		return redis.XMessage{}, fmt.Errorf("failed to read message for DLQ: %w", err)
	}
	if len(messages) == 0 {
		return redis.XMessage{}, fmt.Errorf("message %s not found in stream %s", msgID, stream)
	}

	dlqData := map[string]any{
		"original_stream": stream,
		"original_id":     msgID,
		"failed_at":       time.Now().UTC().Format(time.RFC3339),
		"consumer":        c.consumer,
		"group":           c.group,
	}
	for k, v := range messages[0].Values {
		dlqData["original_"+k] = v
	}

	if err := c.client.XAdd(ctx, &redis.XAddArgs{
		Stream: "dlq:" + stream,
		Values: dlqData,
	}).Err(); err != nil {
		return redis.XMessage{}, fmt.Errorf("failed to add message to DLQ: %w", err)
	}
	return messages[0], nil
}
