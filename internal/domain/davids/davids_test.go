package davids_test

import (
	"testing"

	"github.com/okian/behavmetrix/internal/domain/davids"
	"github.com/okian/behavmetrix/internal/domain/outcome"
	. "github.com/smartystreets/goconvey/convey"
)

func TestScores(t *testing.T) {
	Convey("Given an outcome matrix", t, func() {
		m := outcome.New()

		Convey("When nothing was observed", func() {
			Convey("Then the scores are empty, not an error", func() {
				So(davids.Scores(m), ShouldBeEmpty)
				So(davids.Raw(m), ShouldBeEmpty)
			})
		})

		Convey("When a strict linear hierarchy was observed", func() {
			m.Record("a", "b")
			m.Record("a", "c")
			m.Record("b", "c")
			m.Record("a", "d")
			m.Record("b", "d")
			m.Record("c", "d")

			scores := davids.Scores(m)

			Convey("Then the undefeated individual normalizes to 1", func() {
				So(scores["a"], ShouldEqual, 1.0)
			})

			Convey("And the individual that lost every encounter normalizes to 0", func() {
				So(scores["d"], ShouldEqual, 0.0)
			})

			Convey("And the middle ranks keep their order", func() {
				So(scores["b"], ShouldBeGreaterThan, scores["c"])
				So(scores["b"], ShouldBeLessThan, 1.0)
				So(scores["c"], ShouldBeGreaterThan, 0.0)
			})
		})

		Convey("When three individuals form a chain", func() {
			m.Record("a", "b")
			m.Record("a", "c")
			m.Record("b", "c")
			parts := davids.Breakdown(m)
			raw := davids.Raw(m)

			Convey("Then direct and one-hop tiers follow the definition", func() {
				So(parts["a"].DirectWins, ShouldEqual, 2.0)
				So(parts["a"].IndirectWins, ShouldEqual, 1.0)
				So(parts["c"].DirectLosses, ShouldEqual, 2.0)
				So(parts["c"].IndirectLosses, ShouldEqual, 1.0)
				So(raw["a"], ShouldEqual, 3.0)
				So(raw["b"], ShouldEqual, 0.0)
				So(raw["c"], ShouldEqual, -3.0)
			})

			Convey("And the normalized middle sits halfway", func() {
				So(davids.Scores(m)["b"], ShouldAlmostEqual, 0.5)
			})
		})

		Convey("When encounters are mixed", func() {
			m.Record("a", "b")
			m.Record("a", "b")
			m.Record("a", "b")
			m.Record("b", "a")

			raw := davids.Raw(m)

			Convey("Then proportions rather than counts drive the score", func() {
				So(raw["a"], ShouldAlmostEqual, 0.5)
				So(raw["b"], ShouldAlmostEqual, -0.5)
			})
		})

		Convey("When every raw score is equal", func() {
			m.Record("a", "b")
			m.Record("b", "a")

			scores := davids.Scores(m)

			Convey("Then the span falls back to 1 and everyone maps to 0", func() {
				So(scores["a"], ShouldEqual, 0.0)
				So(scores["b"], ShouldEqual, 0.0)
			})
		})
	})
}
