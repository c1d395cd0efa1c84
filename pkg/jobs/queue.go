package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrQueueFull is returned when the buffer is saturated; callers drop or log.
	ErrQueueFull = errors.New("queue full")
	// ErrQueueStopped is returned once the queue has been stopped or never started.
	ErrQueueStopped = errors.New("queue not running")
)

const (
	maxRetryDelay       = 30 * time.Second
	defaultDrainTimeout = 5 * time.Second
)

// Job is one unit of background work.
type Job struct {
	ID       string
	Type     string
	Payload  []byte
	Attempt  int
	Enqueued time.Time
}

// Handler processes a job.
type Handler func(context.Context, Job) error

// QueueConfig configures worker pool behaviour.
type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	// DrainTimeout bounds how long Stop keeps delivering buffered jobs.
	DrainTimeout time.Duration
	// OnGiveUp sees every job that exhausted its retries or could not be delivered
	// before shutdown.
	OnGiveUp func(Job, error)
	Logger   *zap.Logger
}

// Queue is an in-memory dispatcher backed by goroutines. Enqueue never blocks so it can
// sit on request paths. Failed jobs back off exponentially from RetryDelay; Stop delivers
// what is still buffered before returning.
type Queue struct {
	name    string
	handler Handler
	cfg     QueueConfig
	logger  *zap.Logger

	jobs    chan Job
	cancel  context.CancelFunc
	workers sync.WaitGroup
	retries sync.WaitGroup

	mu      sync.Mutex
	running bool
}

// NewQueue builds a queue around handler.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 64
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = defaultDrainTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Queue{
		name:    name,
		handler: handler,
		cfg:     cfg,
		logger:  logger.With(zap.String("queue", name)),
		jobs:    make(chan Job, cfg.BufferSize),
	}
}

// Start launches the workers. Calling it on a running queue does nothing.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	q.cancel = cancel
	for i := 0; i < q.cfg.Workers; i++ {
		q.workers.Add(1)
		go q.work(runCtx)
	}
	q.running = true
	q.logger.Info("queue started", zap.Int("workers", q.cfg.Workers))
}

// Stop refuses new jobs, drains the buffer within DrainTimeout and waits for workers and
// pending retries to finish.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	q.cancel()
	q.mu.Unlock()

	q.workers.Wait()
	q.retries.Wait()

	leftover := 0
	for {
		select {
		case job := <-q.jobs:
			leftover++
			q.giveUp(job, ErrQueueStopped)
		default:
			q.logger.Info("queue stopped", zap.Int("abandoned", leftover))
			return
		}
	}
}

// Enqueue pushes a job onto the queue without blocking.
func (q *Queue) Enqueue(job Job) error {
	q.mu.Lock()
	running := q.running
	q.mu.Unlock()
	if !running {
		return fmt.Errorf("%s: %w", q.name, ErrQueueStopped)
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}
	return q.push(job)
}

// Len reports the number of buffered jobs.
func (q *Queue) Len() int {
	return len(q.jobs)
}

func (q *Queue) push(job Job) error {
	select {
	case q.jobs <- job:
		return nil
	default:
		return fmt.Errorf("%s: %w", q.name, ErrQueueFull)
	}
}

func (q *Queue) work(ctx context.Context) {
	defer q.workers.Done()
	for {
		select {
		case <-ctx.Done():
			q.drain()
			return
		case job := <-q.jobs:
			if err := q.handler(ctx, job); err != nil {
				q.retry(ctx, job, err)
			}
		}
	}
}

// drain delivers buffered jobs once more, without retries, until the buffer is empty or
// the drain window closes.
func (q *Queue) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), q.cfg.DrainTimeout)
	defer cancel()
	for {
		select {
		case job := <-q.jobs:
			if ctx.Err() != nil {
				q.giveUp(job, ctx.Err())
				continue
			}
			if err := q.handler(ctx, job); err != nil {
				q.giveUp(job, err)
			}
		default:
			return
		}
	}
}

func (q *Queue) retry(ctx context.Context, job Job, err error) {
	job.Attempt++
	if job.Attempt > q.cfg.MaxRetries {
		q.giveUp(job, err)
		return
	}
	delay := q.cfg.RetryDelay << (job.Attempt - 1)
	if delay <= 0 || delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	q.logger.Warn("job failed, retrying",
		zap.String("job_id", job.ID),
		zap.String("type", job.Type),
		zap.Int("attempt", job.Attempt),
		zap.Duration("delay", delay),
		zap.Error(err))

	q.retries.Add(1)
	go func() {
		defer q.retries.Done()
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			q.giveUp(job, ErrQueueStopped)
		case <-timer.C:
			if err := q.push(job); err != nil {
				q.giveUp(job, err)
			}
		}
	}()
}

func (q *Queue) giveUp(job Job, err error) {
	q.logger.Error("job abandoned",
		zap.String("job_id", job.ID),
		zap.String("type", job.Type),
		zap.Int("attempt", job.Attempt),
		zap.Error(err))
	if q.cfg.OnGiveUp != nil {
		q.cfg.OnGiveUp(job, err)
	}
}
