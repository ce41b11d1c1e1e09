package bootstrap

import (
	"context"
	"errors"

	"pulse_server/adapter/in/worker"
	"pulse_server/internal/stream"
	"pulse_server/pkg/logger"
)

// Worker consumes the job stream and runs jobs on the worker pool.
type Worker struct {
	pool     *worker.Pool
	consumer *stream.Consumer
	cancel   context.CancelFunc
}

func NewWorker(deps *Dependencies) (*Worker, error) {
	if deps.Stream == nil {
		return nil, errors.New("worker requires REDIS_URL")
	}
	cfg := deps.Config

	handler := worker.NewHandler(worker.NewSentimentProcessor(deps.SentimentService))

	poolConfig := worker.DefaultPoolConfig()
	poolConfig.MaxWorkers = cfg.WorkerMax
	poolConfig.BatchSize = cfg.WorkerBatchSize

	zlog := logger.Default().Zerolog().With().Str("worker_id", cfg.WorkerID).Logger()
	pool := worker.NewPool(handler, poolConfig, zlog)

	return &Worker{
		pool:     pool,
		consumer: stream.NewConsumer(deps.Stream, pool, cfg.WorkerID),
	}, nil
}

// Start starts the pool and the stream consumer.
func (w *Worker) Start() error {
	if err := w.pool.Start(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	if err := w.consumer.Start(ctx); err != nil {
		cancel()
		w.pool.Stop()
		return err
	}

	logger.Info("Worker started")
	return nil
}

// Stop stops reading new jobs and drains the pool.
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.pool.Stop()
	logger.Info("Worker stopped")
}
