package bootstrap

import (
	"context"
	"errors"
	"os"
	"sync"

	"triage_server/adapter/in/worker"
	"triage_server/adapter/out/messaging"
	"triage_server/internal/stream"
	"triage_server/pkg/logger"

	"github.com/rs/zerolog"
)

// ErrWorkerNeedsRedis is returned when worker mode starts without Redis.
var ErrWorkerNeedsRedis = errors.New("worker mode requires REDIS_URL")

// Worker consumes triage jobs from the Redis stream.
type Worker struct {
	consumer *messaging.Consumer
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	zlog     zerolog.Logger
}

func NewWorker(deps *Dependencies) (*Worker, error) {
	if deps.Redis == nil || deps.JobStore == nil {
		return nil, ErrWorkerNeedsRedis
	}
	cfg := deps.Config

	zlog := logger.Default().Zerolog().With().
		Str("component", "worker").
		Str("worker_id", cfg.WorkerID).
		Logger()
	if cfg.IsDevelopment() {
		zlog = zlog.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	processor := worker.NewJobProcessor(deps.Triage, deps.JobStore, cfg.WorkerID, zlog)

	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{
		ctx:    ctx,
		cancel: cancel,
		zlog:   zlog,
	}
	w.consumer = messaging.NewConsumer(deps.Redis, &messaging.ConsumerConfig{
		Group:       stream.GroupWorkers,
		Consumer:    cfg.WorkerID,
		Streams:     []string{stream.StreamJobs},
		Handler:     processor,
		Logger:      zlog,
		Concurrency: cfg.WorkerConcurrency,
	})
	logger.Info("Job consumer configured (concurrency=%d)", cfg.WorkerConcurrency)

	return w, nil
}

// Start blocks until Stop is called.
func (w *Worker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.zlog.Info().Msg("Starting Redis Stream Consumer...")
		if err := w.consumer.Run(w.ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.zlog.Error().Err(err).Msg("Redis Stream Consumer error")
		}
	}()

	<-w.ctx.Done()
	w.wg.Wait()
}

func (w *Worker) Stop() {
	w.cancel()
	w.wg.Wait()
}
