package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/behavmetrix/internal/adapters/mq/queue"
	"github.com/okian/behavmetrix/internal/adapters/mq/worker"
	"github.com/okian/behavmetrix/internal/domain/dedupe"
	"github.com/okian/behavmetrix/internal/domain/model"
	"github.com/okian/behavmetrix/pkg/logger"
	"github.com/okian/behavmetrix/pkg/metrics"
)

const defaultQueueSize = 1024

// Service runs analysis jobs, one snapshot per job, on a worker pool.
type Service struct {
	mu sync.RWMutex

	analyzer worker.Analyzer
	queue    *queue.InMemoryQueue
	pool     *worker.Pool
	results  chan worker.Outcome
	sink     *resultSink
	// Keys of snapshots submitted during the current run.
	submitted dedupe.Deduper

	workerCount int
	queueSize   int
	jobTimeout  time.Duration

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the job queue and the result buffer.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithJobTimeout bounds a single analysis pass.
func WithJobTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.jobTimeout = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service around an analyzer.
func New(a worker.Analyzer, opts ...Option) *Service {
	s := &Service{
		analyzer:    a,
		workerCount: runtime.NumCPU(),
		queueSize:   defaultQueueSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start creates the queue and starts the worker pool. Calling Start on a
// running service is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.results = make(chan worker.Outcome, s.queueSize)
	s.submitted = dedupe.NewInMemoryDeduper()

	s.sink = newResultSink(s.results, s.logger)

	wopts := []worker.Option{worker.WithLogger(s.logger.Named("worker"))}
	if s.jobTimeout > 0 {
		wopts = append(wopts, worker.WithJobTimeout(s.jobTimeout))
	}
	s.pool = worker.NewPool(s.workerCount, s.queue, s.analyzer, s.sink.send, wopts...)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "analysis service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queue_size", s.queueSize),
	)
	return nil
}

// Submit enqueues one snapshot for analysis and returns its job ID. The same
// colony snapshot is accepted once per run.
func (s *Service) Submit(ctx context.Context, snap model.Snapshot) (string, error) { //nolint:gocritic // hugeParam: the job owns its snapshot
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return "", ErrNotStarted
	}

	key := snapshotKey(snap)
	if s.submitted.SeenAndRecord(key) {
		s.logger.Debug(ctx, "duplicate snapshot skipped", logger.String("colony", snap.Colony))
		return "", fmt.Errorf("%w: %s", ErrDuplicateSnapshot, key)
	}

	job := queue.NewJob(snap)
	if !s.queue.Enqueue(ctx, job) {
		s.submitted.Unrecord(key)
		return "", fmt.Errorf("%w: colony %s", ErrQueueFull, snap.Colony)
	}
	s.logger.Debug(ctx, "snapshot submitted",
		logger.String("job_id", job.ID),
		logger.String("colony", snap.Colony),
		logger.Int("records", len(snap.Records)),
	)
	return job.ID, nil
}

// Results returns the outcome stream. It is closed by Stop once every
// queued job has been analyzed.
func (s *Service) Results() <-chan worker.Outcome {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.results
}

// Stop closes the queue and waits for the workers to drain it. If ctx ends
// first the workers are told to stop after their current job.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping analysis service")

	if err := s.queue.Close(); err != nil {
		s.logger.Error(ctx, "error closing queue", logger.Error(err))
	}
	err := s.pool.Wait(ctx)
	if err != nil {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		if serr := s.pool.Shutdown(shutdownCtx); serr != nil {
			s.logger.Warn(ctx, "pool shutdown incomplete", logger.Error(serr))
		}
		cancel()
	}

	// Workers that outlived the shutdown timeout drop their outcome.
	s.sink.close()
	s.started = false
	s.logger.Info(ctx, "analysis service stopped")
	return err
}

// Stats returns service statistics for monitoring.
func (s *Service) Stats(ctx context.Context) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
	}
	if s.started {
		n := s.queue.Len(ctx)
		stats["queueLength"] = n
		stats["submitted"] = s.submitted.Size()
		metrics.UpdateQueue(n, s.queue.Capacity())
	}
	return stats
}

func snapshotKey(snap model.Snapshot) string { //nolint:gocritic // hugeParam: snapshots are values
	if snap.TakenAt.IsZero() {
		return snap.Colony
	}
	return snap.Colony + "@" + snap.TakenAt.UTC().Format(time.RFC3339Nano)
}

// resultSink forwards outcomes to the results channel until it is closed.
// Sends after close are dropped, so a worker still inside Analyze when Stop
// gives up on it cannot write to a closed channel.
type resultSink struct {
	mu      sync.RWMutex
	out     chan worker.Outcome
	stopped chan struct{}
	closed  bool
	logger  logger.Logger
}

func newResultSink(out chan worker.Outcome, l logger.Logger) *resultSink {
	return &resultSink{out: out, stopped: make(chan struct{}), logger: l}
}

func (r *resultSink) send(ctx context.Context, o worker.Outcome) { //nolint:gocritic // hugeParam: outcomes travel by value
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		r.dropped(ctx, o)
		return
	}
	select {
	case r.out <- o:
	case <-ctx.Done():
		r.dropped(ctx, o)
	case <-r.stopped:
		r.dropped(ctx, o)
	}
}

// close wakes blocked senders, then closes the channel once none is sending.
func (r *resultSink) close() {
	close(r.stopped)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	close(r.out)
}

func (r *resultSink) dropped(ctx context.Context, o worker.Outcome) { //nolint:gocritic // hugeParam: outcomes travel by value
	r.logger.Warn(ctx, "outcome dropped",
		logger.String("job_id", o.Job.ID),
		logger.String("colony", o.Job.Colony),
	)
}
