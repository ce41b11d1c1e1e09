package worker

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-pkgz/pool"
	"github.com/rs/zerolog"
)

// =============================================================================
// go-pkgz/pool 기반 Worker Pool
// =============================================================================

// ErrPoolNotStarted is returned when submitting to a pool that is not running.
var ErrPoolNotStarted = errors.New("worker pool not started")

// PoolConfig holds worker pool configuration.
type PoolConfig struct {
	MaxWorkers       int                       // 최대 워커 수
	JobTimeout       time.Duration             // 작업 기본 타임아웃
	JobTimeoutByType map[JobType]time.Duration // 작업 유형별 타임아웃
	MaxRetries       int                       // 재시도 횟수
	RetryBase        time.Duration             // 재시도 backoff 기준값
	BatchSize        int                       // 배치 처리 크기
	WorkerChanSize   int                       // 워커 채널 버퍼 크기
}

// DefaultPoolConfig returns default pool configuration.
func DefaultPoolConfig() *PoolConfig {
	return &PoolConfig{
		MaxWorkers:     4,
		JobTimeout:     60 * time.Second,
		MaxRetries:     3,
		RetryBase:      time.Second,
		BatchSize:      1,
		WorkerChanSize: 100,
		JobTimeoutByType: map[JobType]time.Duration{
			JobSentimentBatch: 5 * time.Minute, // 배치는 메일 수만큼 LLM 호출
		},
	}
}

// JobProcessor processes one message. Handler satisfies it.
type JobProcessor interface {
	Process(ctx context.Context, msg *Message) error
}

// Pool runs jobs on a go-pkgz/pool worker group.
type Pool struct {
	handler JobProcessor
	config  *PoolConfig

	pool *pool.WorkerGroup[*Message]

	ctx    context.Context
	cancel context.CancelFunc

	metrics *PoolMetrics
	log     zerolog.Logger

	started bool
	mu      sync.Mutex
}

// PoolMetrics holds pool counters.
type PoolMetrics struct {
	JobsProcessed int64
	JobsFailed    int64
	JobsRetried   int64
	InFlight      int32
}

// messageWorker implements pool.Worker interface for Message processing.
type messageWorker struct {
	pool *Pool
}

// Do implements pool.Worker interface.
func (w *messageWorker) Do(ctx context.Context, msg *Message) error {
	return w.pool.processJob(ctx, msg)
}

// NewPool creates a new worker pool.
func NewPool(handler JobProcessor, config *PoolConfig, log zerolog.Logger) *Pool {
	if config == nil {
		config = DefaultPoolConfig()
	}
	if config.MaxWorkers < 1 {
		config.MaxWorkers = 1
	}
	if config.BatchSize < 1 {
		config.BatchSize = 1
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		handler: handler,
		config:  config,
		ctx:     ctx,
		cancel:  cancel,
		metrics: &PoolMetrics{},
		log:     log.With().Str("component", "worker_pool").Logger(),
	}
}

// Start starts the worker pool.
func (p *Pool) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return nil
	}

	p.pool = pool.New[*Message](p.config.MaxWorkers, &messageWorker{pool: p}).
		WithBatchSize(p.config.BatchSize).
		WithWorkerChanSize(p.config.WorkerChanSize).
		WithContinueOnError()

	if err := p.pool.Go(p.ctx); err != nil {
		p.log.Error().Err(err).Msg("failed to start pool")
		return err
	}
	p.started = true

	p.log.Info().
		Int("max_workers", p.config.MaxWorkers).
		Int("batch_size", p.config.BatchSize).
		Msg("worker pool started")
	return nil
}

// Stop waits for submitted jobs and stops the pool.
func (p *Pool) Stop() {
	p.log.Info().Msg("stopping worker pool...")

	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer closeCancel()

	if err := p.pool.Close(closeCtx); err != nil {
		p.log.Warn().Err(err).Msg("error closing pool")
	}
	p.cancel()

	p.log.Info().
		Int64("processed", atomic.LoadInt64(&p.metrics.JobsProcessed)).
		Int64("failed", atomic.LoadInt64(&p.metrics.JobsFailed)).
		Msg("worker pool stopped")
}

// Submit submits a job to the pool.
func (p *Pool) Submit(msg *Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started || p.pool == nil {
		return ErrPoolNotStarted
	}
	atomic.AddInt32(&p.metrics.InFlight, 1)
	p.pool.Submit(msg)
	return nil
}

// jobTimeout returns the timeout for a job type.
func (p *Pool) jobTimeout(jobType JobType) time.Duration {
	if timeout, ok := p.config.JobTimeoutByType[jobType]; ok {
		return timeout
	}
	return p.config.JobTimeout
}

// processJob processes a single job with timeout.
func (p *Pool) processJob(ctx context.Context, msg *Message) error {
	defer atomic.AddInt32(&p.metrics.InFlight, -1)

	timeout := p.jobTimeout(msg.Type)
	jobCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := p.handler.Process(jobCtx, msg)
	if err == nil {
		atomic.AddInt64(&p.metrics.JobsProcessed, 1)
		p.log.Debug().
			Str("job_id", msg.ID).
			Str("job_type", msg.Type).
			Dur("elapsed", time.Since(start)).
			Msg("job processed")
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		p.log.Warn().
			Str("job_id", msg.ID).
			Str("job_type", msg.Type).
			Dur("timeout", timeout).
			Msg("job timed out")
	}

	p.log.Error().
		Err(err).
		Str("job_id", msg.ID).
		Str("job_type", msg.Type).
		Int("retries", msg.Retries).
		Msg("job processing failed")

	if msg.Retries < p.config.MaxRetries && ctx.Err() == nil {
		p.scheduleRetry(msg)
		return err
	}

	atomic.AddInt64(&p.metrics.JobsFailed, 1)
	p.log.Error().
		Str("job_id", msg.ID).
		Str("job_type", msg.Type).
		Int("retries", msg.Retries).
		Msg("job permanently failed")
	return err
}

// scheduleRetry resubmits msg after exponential backoff with jitter.
func (p *Pool) scheduleRetry(msg *Message) {
	msg.Retries++
	atomic.AddInt64(&p.metrics.JobsRetried, 1)

	backoff := retryBackoff(p.config.RetryBase, msg.Retries)
	time.AfterFunc(backoff, func() {
		if err := p.Submit(msg); err != nil {
			atomic.AddInt64(&p.metrics.JobsFailed, 1)
			p.log.Warn().Str("job_id", msg.ID).Err(err).Msg("retry dropped")
		}
	})
}

// retryBackoff returns base * 2^attempt plus up to half of base as jitter.
func retryBackoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	backoff := base * time.Duration(1<<attempt)
	return backoff + time.Duration(rand.Int63n(int64(base)/2+1))
}

// GetMetrics returns current pool metrics.
func (p *Pool) GetMetrics() PoolMetrics {
	return PoolMetrics{
		JobsProcessed: atomic.LoadInt64(&p.metrics.JobsProcessed),
		JobsFailed:    atomic.LoadInt64(&p.metrics.JobsFailed),
		JobsRetried:   atomic.LoadInt64(&p.metrics.JobsRetried),
		InFlight:      atomic.LoadInt32(&p.metrics.InFlight),
	}
}
