package notify

import (
	"context"
	"sync"
	"time"

	"NeighborGuard/pkg/metrics"
	"NeighborGuard/pkg/notification"

	"go.uber.org/zap"
)

// Notifier is what a queue worker runs; *Dispatcher implements it.
type Notifier interface {
	Notify(ctx context.Context, circleID string, p *notification.Payload, opts Options) (Result, error)
}

// Job is one queued dispatch. When Build is set the worker calls it to
// produce the payload; an error drops the job.
type Job struct {
	Kind     string
	CircleID string
	EventID  string
	Payload  *notification.Payload
	Build    func(ctx context.Context) (*notification.Payload, error)
	Options  Options
}

// Queue hands dispatches off the request path to a fixed worker pool. The
// buffer is bounded; Enqueue drops instead of blocking when it is full.
type Queue struct {
	notifier Notifier
	jobs     chan Job
	workers  int
	metrics  *metrics.Metrics
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

type QueueOption func(*Queue)

func WithQueueMetrics(m *metrics.Metrics) QueueOption { return func(q *Queue) { q.metrics = m } }

func WithQueueLogger(l *zap.Logger) QueueOption { return func(q *Queue) { q.logger = l } }

// NewQueue starts workers immediately.
func NewQueue(n Notifier, workers, size int, opts ...QueueOption) *Queue {
	if workers <= 0 {
		workers = 1
	}
	if size < 0 {
		size = 0
	}
	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		notifier: n,
		jobs:     make(chan Job, size),
		workers:  workers,
		logger:   zap.NewNop(),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, o := range opts {
		o(q)
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.work(i)
	}
	return q
}

// Enqueue never blocks. It reports false when the queue is full or closed.
func (q *Queue) Enqueue(j Job) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return false
	}
	select {
	case q.jobs <- j:
		q.metrics.QueueDepth(len(q.jobs))
		return true
	default:
		q.metrics.DispatchDropped()
		q.logger.Warn("dispatch queue full, job dropped",
			zap.String("kind", j.Kind),
			zap.String("event_id", j.EventID))
		return false
	}
}

// Len 当前排队数量
func (q *Queue) Len() int { return len(q.jobs) }

func (q *Queue) work(id int) {
	defer q.wg.Done()
	for j := range q.jobs {
		q.metrics.QueueDepth(len(q.jobs))
		q.run(id, j)
	}
}

func (q *Queue) run(worker int, j Job) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("dispatch panicked", zap.Any("panic", r), zap.String("event_id", j.EventID))
		}
	}()
	start := time.Now()
	p := j.Payload
	if j.Build != nil {
		var err error
		if p, err = j.Build(q.ctx); err != nil {
			q.logger.Warn("dispatch skipped",
				zap.String("kind", j.Kind),
				zap.String("event_id", j.EventID),
				zap.Error(err))
			q.metrics.DispatchDone("skipped")
			return
		}
	}
	res, err := q.notifier.Notify(q.ctx, j.CircleID, p, j.Options)
	if err != nil {
		q.logger.Error("dispatch failed",
			zap.Int("worker", worker),
			zap.String("kind", j.Kind),
			zap.String("event_id", j.EventID),
			zap.Error(err))
		q.metrics.DispatchDone("error")
		return
	}
	q.metrics.DispatchDone(j.Kind)
	q.logger.Debug("dispatch done",
		zap.Int("worker", worker),
		zap.String("kind", j.Kind),
		zap.String("event_id", j.EventID),
		zap.Int("sent", res.Sent),
		zap.Int("failed", res.Failed),
		zap.Duration("took", time.Since(start)))
}

// Close stops accepting jobs and waits for queued ones to finish. When ctx
// expires first, in-flight sends are cancelled and ctx.Err() is returned.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		q.cancel()
		return nil
	case <-ctx.Done():
		q.cancel()
		<-done
		return ctx.Err()
	}
}
