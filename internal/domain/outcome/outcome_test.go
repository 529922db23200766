package outcome_test

import (
	"testing"

	"github.com/okian/behavmetrix/internal/domain/model"
	"github.com/okian/behavmetrix/internal/domain/outcome"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMatrix(t *testing.T) {
	Convey("Given an empty matrix", t, func() {
		m := outcome.New()

		Convey("Then it reports no individuals", func() {
			So(m.Empty(), ShouldBeTrue)
			So(m.Individuals(), ShouldBeEmpty)
			So(m.Proportion("a", "b"), ShouldEqual, 0.0)
		})

		Convey("When encounters are recorded", func() {
			m.Record("a", "b")
			m.Record("a", "b")
			m.Record("b", "a")
			m.Record("c", "a")

			Convey("Then both directions are tallied", func() {
				So(m.Wins("a", "b"), ShouldEqual, 2)
				So(m.Wins("b", "a"), ShouldEqual, 1)
				So(m.Encounters("a", "b"), ShouldEqual, 3)
				So(m.Encounters("b", "a"), ShouldEqual, 3)
				So(m.Outcomes("a", "b"), ShouldResemble, []uint8{1, 1, 0})
			})

			Convey("And proportions are win fractions per direction", func() {
				So(m.Proportion("a", "b"), ShouldAlmostEqual, 2.0/3.0)
				So(m.Proportion("b", "a"), ShouldAlmostEqual, 1.0/3.0)
				So(m.Proportion("c", "a"), ShouldEqual, 1.0)
				So(m.Proportion("a", "c"), ShouldEqual, 0.0)
				So(m.Proportion("b", "c"), ShouldEqual, 0.0)
			})

			Convey("And individuals and winning pairs are listed in order", func() {
				So(m.Individuals(), ShouldResemble, []model.IndividualID{"a", "b", "c"})
				So(m.Len(), ShouldEqual, 3)
				So(m.Pairs(), ShouldResemble, []outcome.Pair{
					{Winner: "a", Loser: "b"},
					{Winner: "b", Loser: "a"},
					{Winner: "c", Loser: "a"},
				})
			})
		})
	})
}
