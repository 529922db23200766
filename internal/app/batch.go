package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/okian/behavmetrix/internal/adapters/mq/queue"
	"github.com/okian/behavmetrix/internal/adapters/mq/worker"
	"github.com/okian/behavmetrix/internal/adapters/repository"
	"github.com/okian/behavmetrix/internal/domain/model"
	"github.com/okian/behavmetrix/pkg/logger"
	"github.com/okian/behavmetrix/pkg/metrics"
)

// LoadSnapshot fetches one colony from src and records load metrics.
func LoadSnapshot(ctx context.Context, src repository.Source, colony string, w repository.Window) (model.Snapshot, error) {
	start := time.Now()
	snap, err := src.Load(ctx, colony, w)
	metrics.RecordSourceLoad(float64(time.Since(start).Milliseconds()), err != nil)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("load colony %s: %w", colony, err)
	}
	return snap, nil
}

// RunBatch analyzes every listed colony, or every colony src knows when the
// list is empty, and stops the service once all jobs finish. The service
// must be started. A full queue holds submission back until a worker frees a
// slot, so any number of colonies fits any queue size. Load and submit failures are reported as outcomes;
// outcomes are ordered by colony.
func (s *Service) RunBatch(ctx context.Context, src repository.Source, colonies []string, w repository.Window) ([]worker.Outcome, error) {
	if len(colonies) == 0 {
		var err error
		if colonies, err = src.Colonies(ctx); err != nil {
			return nil, fmt.Errorf("list colonies: %w", err)
		}
	}

	results := s.Results()
	if results == nil {
		return nil, ErrNotStarted
	}

	var (
		mu       sync.Mutex
		outcomes = make([]worker.Outcome, 0, len(colonies))
		wg       sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for o := range results {
			mu.Lock()
			outcomes = append(outcomes, o)
			mu.Unlock()
		}
	}()

	failed := func(colony string, err error) {
		s.logger.Warn(ctx, "colony skipped", logger.String("colony", colony), logger.Error(err))
		mu.Lock()
		outcomes = append(outcomes, worker.Outcome{Job: queue.Job{Colony: colony}, Err: err})
		mu.Unlock()
	}

	for _, colony := range colonies {
		if ctx.Err() != nil {
			break
		}
		snap, err := LoadSnapshot(ctx, src, colony, w)
		if err != nil {
			failed(colony, err)
			continue
		}
		if _, err := s.submitWait(ctx, snap); err != nil {
			failed(colony, err)
		}
	}

	stopErr := s.Stop(ctx)
	wg.Wait()

	sort.SliceStable(outcomes, func(i, j int) bool {
		return outcomes[i].Job.Colony < outcomes[j].Job.Colony
	})
	if stopErr != nil {
		return outcomes, stopErr
	}
	return outcomes, ctx.Err()
}

// submitRetryInterval paces resubmission while the queue is full.
const submitRetryInterval = 10 * time.Millisecond

// submitWait submits snap, retrying while the queue is full until ctx ends.
func (s *Service) submitWait(ctx context.Context, snap model.Snapshot) (string, error) { //nolint:gocritic // hugeParam: the job owns its snapshot
	ticker := time.NewTicker(submitRetryInterval)
	defer ticker.Stop()
	for {
		id, err := s.Submit(ctx, snap)
		if !errors.Is(err, ErrQueueFull) {
			return id, err
		}
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %w", err, ctx.Err())
		case <-ticker.C:
		}
	}
}
