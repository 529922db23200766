package service_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	service "github.com/okian/behavmetrix/internal/app"
	"github.com/okian/behavmetrix/internal/domain/analysis"
	"github.com/okian/behavmetrix/internal/domain/model"
	"github.com/okian/behavmetrix/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type stubAnalyzer struct {
	calls atomic.Int64
	fail  string
}

func (s *stubAnalyzer) Analyze(_ context.Context, snap model.Snapshot) (*analysis.Report, error) { //nolint:gocritic // hugeParam: matches the analyzer contract
	s.calls.Add(1)
	if snap.Colony == s.fail {
		return nil, errors.New("boom")
	}
	return &analysis.Report{Colony: snap.Colony}, nil
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		stub := &stubAnalyzer{}
		svc := service.New(stub,
			service.WithWorkerCount(2),
			service.WithQueueSize(8),
			service.WithLogger(logger.Nop()),
		)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		Convey("When submitting before start", func() {
			_, err := svc.Submit(ctx, model.Snapshot{Colony: "north"})

			Convey("Then it is rejected", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})

		Convey("When the service is started", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)

			stats := svc.Stats(ctx)
			So(stats["started"], ShouldEqual, true)
			So(stats["workerCount"], ShouldEqual, 2)

			Convey("Then submitted snapshots produce outcomes", func() {
				id, err := svc.Submit(ctx, model.Snapshot{Colony: "north"})
				So(err, ShouldBeNil)
				So(id, ShouldNotBeEmpty)

				o := <-svc.Results()
				So(o.Err, ShouldBeNil)
				So(o.Job.ID, ShouldEqual, id)
				So(o.Report.Colony, ShouldEqual, "north")
				So(svc.Stop(ctx), ShouldBeNil)
			})

			Convey("Then a repeated snapshot is rejected", func() {
				snap := model.Snapshot{Colony: "north", TakenAt: now}
				_, err := svc.Submit(ctx, snap)
				So(err, ShouldBeNil)
				_, err = svc.Submit(ctx, snap)
				So(errors.Is(err, service.ErrDuplicateSnapshot), ShouldBeTrue)

				_, err = svc.Submit(ctx, model.Snapshot{Colony: "north", TakenAt: now.Add(time.Hour)})
				So(err, ShouldBeNil)
				So(svc.Stop(ctx), ShouldBeNil)
			})

			Convey("Then analysis failures are reported as outcomes", func() {
				stub.fail = "south"
				_, err := svc.Submit(ctx, model.Snapshot{Colony: "south"})
				So(err, ShouldBeNil)

				o := <-svc.Results()
				So(o.Err, ShouldNotBeNil)
				So(o.Report, ShouldBeNil)
				So(o.Err.Error(), ShouldContainSubstring, "south")
				So(svc.Stop(ctx), ShouldBeNil)
			})

			Convey("Then stop drains queued jobs and closes the results", func() {
				for _, c := range []string{"a", "b", "c", "d"} {
					_, err := svc.Submit(ctx, model.Snapshot{Colony: c})
					So(err, ShouldBeNil)
				}
				results := svc.Results()
				So(svc.Stop(ctx), ShouldBeNil)

				n := 0
				for range results {
					n++
				}
				So(n, ShouldEqual, 4)
				So(stub.calls.Load(), ShouldEqual, 4)
				So(svc.Stats(ctx)["started"], ShouldEqual, false)
			})
		})

		Convey("When stopping a service that never started", func() {
			Convey("Then it is a no-op", func() {
				So(svc.Stop(ctx), ShouldBeNil)
			})
		})
	})
}

func TestService_QueueFull(t *testing.T) {
	Convey("Given a service whose workers are blocked", t, func() {
		block := make(chan struct{})
		svc := service.New(blockingAnalyzer(block),
			service.WithWorkerCount(1),
			service.WithQueueSize(1),
			service.WithLogger(logger.Nop()),
		)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When more snapshots arrive than the queue holds", func() {
			var full error
			for i := 0; i < 8 && full == nil; i++ {
				_, full = svc.Submit(ctx, model.Snapshot{Colony: string(rune('a' + i))})
			}
			close(block)

			Convey("Then submission fails with a full queue", func() {
				So(errors.Is(full, service.ErrQueueFull), ShouldBeTrue)
				results := svc.Results()
				go func() {
					for range results {
					}
				}()
				So(svc.Stop(ctx), ShouldBeNil)
			})
		})
	})
}

type blockingAnalyzer chan struct{}

func (b blockingAnalyzer) Analyze(ctx context.Context, snap model.Snapshot) (*analysis.Report, error) { //nolint:gocritic // hugeParam: matches the analyzer contract
	select {
	case <-b:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &analysis.Report{Colony: snap.Colony}, nil
}

func TestService_StopWhileAnalyzing(t *testing.T) {
	Convey("Given a worker busy with an analysis that outlives the shutdown timeout", t, func() {
		slow := &slowAnalyzer{delay: 1500 * time.Millisecond, entered: make(chan struct{}), returned: make(chan struct{})}
		svc := service.New(slow,
			service.WithWorkerCount(1),
			service.WithQueueSize(2),
			service.WithLogger(logger.Nop()),
		)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)

		_, err := svc.Submit(ctx, model.Snapshot{Colony: "north"})
		So(err, ShouldBeNil)
		<-slow.entered

		Convey("When the run is canceled and the service stopped", func() {
			results := svc.Results()
			cancel()
			err := svc.Stop(ctx)

			Convey("Then stop reports the cancellation and the late outcome is dropped", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)

				<-slow.returned
				time.Sleep(100 * time.Millisecond)

				n := 0
				for range results {
					n++
				}
				So(n, ShouldEqual, 0)
				So(svc.Stats(context.Background())["started"], ShouldEqual, false)
			})
		})
	})
}

type slowAnalyzer struct {
	delay    time.Duration
	entered  chan struct{}
	returned chan struct{}
}

func (s *slowAnalyzer) Analyze(_ context.Context, snap model.Snapshot) (*analysis.Report, error) { //nolint:gocritic // hugeParam: matches the analyzer contract
	close(s.entered)
	defer close(s.returned)
	time.Sleep(s.delay)
	return &analysis.Report{Colony: snap.Colony}, nil
}
