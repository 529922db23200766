package normalize_test

import (
	"testing"
	"time"

	"github.com/okian/behavmetrix/internal/domain/model"
	"github.com/okian/behavmetrix/internal/domain/normalize"
	. "github.com/smartystreets/goconvey/convey"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestEvent(t *testing.T) {
	Convey("Given heterogeneous log records", t, func() {
		ts := fixedNow.Add(-time.Hour)

		Convey("When explicit actor and receiver fields are present", func() {
			e, ok := normalize.Event(model.LogRecord{
				ActorID: "a", AnimalID: "x",
				ReceiverID: "b", InteractionPartnerID: "y",
				BehaviorCode: "agg", Timestamp: ts,
			})

			Convey("Then they take precedence over the aliases", func() {
				So(ok, ShouldBeTrue)
				So(e.Actor, ShouldEqual, model.IndividualID("a"))
				So(e.Receiver, ShouldEqual, model.IndividualID("b"))
				So(e.Code, ShouldEqual, "AGG")
				So(e.Timestamp, ShouldEqual, ts)
			})
		})

		Convey("When only the alias fields are present", func() {
			e, ok := normalize.Event(model.LogRecord{
				AnimalID: "x", InteractionPartnerID: "y", BehaviorCode: "SUB",
			})

			Convey("Then the aliases are used", func() {
				So(ok, ShouldBeTrue)
				So(e.Actor, ShouldEqual, model.IndividualID("x"))
				So(e.Receiver, ShouldEqual, model.IndividualID("y"))
			})
		})

		Convey("When the receiver cannot be resolved", func() {
			_, ok := normalize.Event(model.LogRecord{AnimalID: "x", BehaviorCode: "AGG"})

			Convey("Then no event is produced", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the actor cannot be resolved", func() {
			_, ok := normalize.Event(model.LogRecord{ReceiverID: "y", BehaviorCode: "AGG"})

			Convey("Then no event is produced", func() {
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestNormalizer_Records(t *testing.T) {
	Convey("Given a normalizer with a fixed clock", t, func() {
		n := normalize.New(normalize.WithClock(func() time.Time { return fixedNow }))

		Convey("When normalizing a mixed window", func() {
			recs := []model.LogRecord{
				{RecordID: "1", AnimalID: "a", ReceiverID: "b", BehaviorCode: "AGG", Timestamp: fixedNow.Add(-time.Minute)},
				{RecordID: "1", AnimalID: "a", ReceiverID: "b", BehaviorCode: "AGG", Timestamp: fixedNow.Add(-time.Minute)},
				{RecordID: "2", AnimalID: "a", BehaviorCode: " groom "},
				{RecordID: "3", ReceiverID: "b", BehaviorCode: "AGG"},
				{RecordID: "", AnimalID: "c", InteractionPartnerID: "a", BehaviorCode: "SUB"},
				{RecordID: "", AnimalID: "c", InteractionPartnerID: "a", BehaviorCode: "SUB"},
			}
			events, rep := n.Records(recs)

			Convey("Then duplicates and actor-less rows are dropped", func() {
				So(rep.Total, ShouldEqual, 6)
				So(rep.Duplicates, ShouldEqual, 1)
				So(rep.MissingActor, ShouldEqual, 1)
				So(rep.Kept, ShouldEqual, 4)
				So(len(events), ShouldEqual, 4)
			})

			Convey("And non-dyadic rows are kept for colony statistics", func() {
				So(rep.MissingReceiver, ShouldEqual, 1)
				So(rep.Dyadic, ShouldEqual, 3)
				So(events[1].Code, ShouldEqual, "GROOM")
				So(events[1].IsDyadic(), ShouldBeFalse)
			})

			Convey("And missing timestamps are defaulted to the clock", func() {
				So(rep.DefaultedTimestamps, ShouldEqual, 3)
				So(events[1].Timestamp, ShouldEqual, fixedNow)
				So(events[0].Timestamp, ShouldEqual, fixedNow.Add(-time.Minute))
			})
		})

		Convey("When normalizing an empty window", func() {
			events, rep := n.Records(nil)

			Convey("Then nothing is produced and nothing fails", func() {
				So(events, ShouldBeEmpty)
				So(rep.Total, ShouldEqual, 0)
			})
		})
	})
}

func TestNormalizer_Stress(t *testing.T) {
	Convey("Given a normalizer with a fixed clock", t, func() {
		n := normalize.New(normalize.WithClock(func() time.Time { return fixedNow }))

		Convey("When indicators are present", func() {
			cortisol := 80.0
			out := n.Stress([]model.StressSample{{
				IndividualID: "a", StressScore: 1,
				Withdrawal: true, FearGrimace: true, SelfBiting: true, Pacing: true, Isolation: true,
				CortisolLevel: &cortisol,
			}})

			Convey("Then the weighted score sums the indicator table", func() {
				So(len(out), ShouldEqual, 1)
				So(*out[0].WeightedScore, ShouldEqual, 17.0)
				So(out[0].Timestamp, ShouldEqual, fixedNow)
			})
		})

		Convey("When cortisol is high", func() {
			cortisol := 120.0
			w := normalize.WeightedStress(model.StressSample{CortisolLevel: &cortisol})

			Convey("Then its contribution is capped", func() {
				So(w, ShouldEqual, 5.0)
			})
		})

		Convey("When cortisol is negative", func() {
			cortisol := -15.0
			w := normalize.WeightedStress(model.StressSample{StressScore: 4, Pacing: true, CortisolLevel: &cortisol})

			Convey("Then it lowers the weight", func() {
				So(w, ShouldEqual, 0.5)
			})
		})

		Convey("When indicators cancel out to zero", func() {
			cortisol := -20.0
			w := normalize.WeightedStress(model.StressSample{StressScore: 6, Withdrawal: true, CortisolLevel: &cortisol})

			Convey("Then the raw stress score is used", func() {
				So(w, ShouldEqual, 6.0)
			})
		})

		Convey("When no indicator is present", func() {
			w := normalize.WeightedStress(model.StressSample{StressScore: 7})

			Convey("Then the raw stress score is used", func() {
				So(w, ShouldEqual, 7.0)
			})
		})

		Convey("When a weighted score was already computed", func() {
			pre := 3.25
			out := n.Stress([]model.StressSample{{IndividualID: "a", StressScore: 9, WeightedScore: &pre, Pacing: true}})

			Convey("Then it is kept", func() {
				So(*out[0].WeightedScore, ShouldEqual, 3.25)
			})
		})

		Convey("When a sample has no individual", func() {
			out := n.Stress([]model.StressSample{{StressScore: 9}})

			Convey("Then it is dropped", func() {
				So(out, ShouldBeEmpty)
			})
		})
	})
}

func TestNormalizer_Enrichment(t *testing.T) {
	Convey("Given enrichment samples with gaps in their fields", t, func() {
		n := normalize.New(normalize.WithClock(func() time.Time { return fixedNow }))
		out := n.Enrichment([]model.EnrichmentSample{
			{IndividualID: "a"},
			{ItemID: "puzzle"},
		})

		Convey("Then individual-less samples are dropped and timestamps defaulted", func() {
			So(len(out), ShouldEqual, 1)
			So(out[0].Timestamp, ShouldEqual, fixedNow)
		})
	})
}
