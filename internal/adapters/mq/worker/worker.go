// Package worker runs analysis jobs taken from the queue.
//
// Every job is analyzed on its own snapshot; workers share nothing but the
// immutable Analyzer.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/behavmetrix/internal/adapters/mq/queue"
	"github.com/okian/behavmetrix/internal/domain/analysis"
	"github.com/okian/behavmetrix/internal/domain/model"
	"github.com/okian/behavmetrix/pkg/logger"
	"github.com/okian/behavmetrix/pkg/metrics"
)

// Default worker configuration constants.
const (
	poolShutdownTimeout = 30 * time.Second
)

// Analyzer runs one full pass over a snapshot.
type Analyzer interface {
	Analyze(ctx context.Context, snap model.Snapshot) (*analysis.Report, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Outcome is the result of one job.
type Outcome struct {
	Job    queue.Job
	Report *analysis.Report
	Err    error
}

// Sink receives every outcome. It is called from worker goroutines and
// must be safe for concurrent use.
type Sink func(ctx context.Context, o Outcome)

// Worker processes jobs.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue drains.
	Run(ctx context.Context)

	// Shutdown stops the worker after its current job.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue    Queue
	analyzer Analyzer
	sink     Sink
	name     string
	timeout  time.Duration

	// Shared with the pool for the active gauge.
	active *atomic.Int64
	total  int

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, a Analyzer, sink Sink, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		analyzer: a,
		sink:     sink,
		name:     "worker",
		active:   new(atomic.Int64),
		total:    1,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, job)
		}
	}
}

// Shutdown stops the worker after its current job.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

// process analyzes one job and forwards the outcome.
func (w *InMemoryWorker) process(ctx context.Context, job queue.Job) { //nolint:gocritic // hugeParam: Job must be passed by value for channel semantics
	start := time.Now()
	metrics.UpdateWorkers(w.total, int(w.active.Add(1)))
	defer func() {
		metrics.UpdateWorkers(w.total, int(w.active.Add(-1)))
	}()

	jobCtx := ctx
	if w.timeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	rep, err := w.analyzer.Analyze(jobCtx, job.Snapshot)
	metrics.RecordWorkerJob(float64(time.Since(start).Milliseconds()), err != nil)
	if err != nil {
		level := w.logger.Error
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			level = w.logger.Warn
		}
		level(ctx, "analysis failed",
			logger.String("job_id", job.ID),
			logger.String("colony", job.Colony),
			logger.Error(err),
		)
		err = fmt.Errorf("job %s (%s): %w", job.ID, job.Colony, err)
	}

	if w.sink != nil {
		w.sink(ctx, Outcome{Job: job, Report: rep, Err: err})
	}
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	active  atomic.Int64
	logger  logger.Logger
}

// NewPool creates a new worker pool. workerCount < 1 uses one worker per CPU.
func NewPool(workerCount int, q Queue, a Analyzer, sink Sink, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		wopts := append([]Option{
			WithName("worker-" + strconv.Itoa(i)),
			withGauge(&pool.active, workerCount),
		}, opts...)
		pool.workers[i] = NewInMemoryWorker(q, a, sink, wopts...)
	}

	metrics.UpdateWorkers(workerCount, 0)

	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Wait blocks until every worker has returned, which happens once the queue
// is closed and drained or the run context is canceled.
func (p *Pool) Wait(ctx context.Context) error {
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			p.logger.Warn(ctx, "worker wait interrupted", logger.Int("worker_id", i))
			return ctx.Err()
		}
	}
	return nil
}

// Shutdown closes the queue and stops every worker after its current job.
// Jobs still queued are not analyzed.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var errs []error
	for i, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
