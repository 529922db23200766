package testevents

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/behavmetrix/internal/domain/model"
	"github.com/okian/behavmetrix/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithLevel("error")); err != nil {
		panic(err)
	}
}

var testEnd = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Colonies = 3
	cfg.Individuals = 8
	cfg.Interactions = 300
	cfg.End = testEnd
	cfg.Workers = 2
	return cfg
}

func TestGenerate(t *testing.T) {
	Convey("Given a generator config", t, func() {
		cfg := testConfig()
		ctx := context.Background()

		Convey("When generating colonies", func() {
			stats := &Stats{}
			colonies, err := Generate(ctx, cfg, stats)
			So(err, ShouldBeNil)

			Convey("Then every colony has its roster and latent order", func() {
				So(colonies, ShouldHaveLength, 3)
				for _, c := range colonies {
					So(c.Snapshot.Roster, ShouldHaveLength, 8)
					So(c.Latent, ShouldHaveLength, 8)
					So(c.Snapshot.TakenAt, ShouldEqual, testEnd)
				}
				So(colonies[0].Snapshot.Colony, ShouldEqual, "colony-01")
				So(colonies[2].Snapshot.Colony, ShouldEqual, "colony-03")
			})

			Convey("Then records stay inside the observation span", func() {
				start := testEnd.AddDate(0, 0, -cfg.Days)
				for _, c := range colonies {
					So(len(c.Snapshot.Records), ShouldBeGreaterThanOrEqualTo, cfg.Interactions)
					for _, r := range c.Snapshot.Records {
						So(r.Timestamp.Before(start), ShouldBeFalse)
						So(r.Timestamp.After(testEnd), ShouldBeFalse)
					}
				}
			})

			Convey("Then stress and enrichment samples are present", func() {
				So(colonies[0].Snapshot.Stress, ShouldNotBeEmpty)
				So(colonies[0].Snapshot.Enrichment, ShouldNotBeEmpty)
			})

			Convey("Then statistics are collected", func() {
				So(stats.ColoniesGenerated, ShouldEqual, 3)
				So(stats.Individuals, ShouldEqual, 24)
				So(stats.Records, ShouldBeGreaterThanOrEqualTo, 900)
			})
		})

		Convey("When generating twice with the same seed", func() {
			a, err := Generate(ctx, cfg, nil)
			So(err, ShouldBeNil)
			cfg.Workers = 1
			b, err := Generate(ctx, cfg, nil)
			So(err, ShouldBeNil)

			Convey("Then the output is identical", func() {
				So(b, ShouldResemble, a)
			})
		})

		Convey("When the seed changes", func() {
			a, err := Generate(ctx, cfg, nil)
			So(err, ShouldBeNil)
			cfg.Seed++
			b, err := Generate(ctx, cfg, nil)
			So(err, ShouldBeNil)

			Convey("Then the individuals differ", func() {
				So(b[0].Latent[0], ShouldNotEqual, a[0].Latent[0])
			})
		})

		Convey("When noise is zero", func() {
			cfg.Noise = 0
			cfg.NonDyadicShare = 0
			cfg.DuplicateRate = 0
			colonies, err := Generate(ctx, cfg, nil)
			So(err, ShouldBeNil)

			Convey("Then every interaction is won by the stronger individual", func() {
				c := colonies[0]
				rank := make(map[model.IndividualID]int, len(c.Latent))
				for i, id := range c.Latent {
					rank[id] = i
				}
				So(c.Snapshot.Records, ShouldHaveLength, cfg.Interactions)
				for _, r := range c.Snapshot.Records {
					actor, receiver := r.ActorID, r.ReceiverID
					if actor == "" {
						actor, receiver = r.AnimalID, r.InteractionPartnerID
					}
					if r.BehaviorCode == CodeSubmission {
						So(rank[receiver], ShouldBeLessThan, rank[actor])
					} else {
						So(rank[actor], ShouldBeLessThan, rank[receiver])
					}
				}
			})
		})

		Convey("When the config is invalid", func() {
			cfg.Individuals = 1
			_, err := Generate(ctx, cfg, nil)

			Convey("Then generation is refused", func() {
				So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
			})
		})

		Convey("When the context is canceled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := Generate(cctx, cfg, nil)

			Convey("Then generation stops with the context error", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}
