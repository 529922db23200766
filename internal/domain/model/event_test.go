package model_test

import (
	"testing"
	"time"

	model "github.com/okian/behavmetrix/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestBehaviorEvent(t *testing.T) {
	convey.Convey("Given a behavior event", t, func() {
		convey.Convey("When both parties are present", func() {
			e := model.BehaviorEvent{Actor: "a", Receiver: "b", Code: "AGG", Timestamp: time.Now()}

			convey.Convey("Then it should be dyadic", func() {
				convey.So(e.IsDyadic(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the receiver is missing", func() {
			e := model.BehaviorEvent{Actor: "a", Code: "GROOM"}

			convey.Convey("Then it should not be dyadic", func() {
				convey.So(e.IsDyadic(), convey.ShouldBeFalse)
			})
		})
	})
}

func TestIndividual_DisplayName(t *testing.T) {
	convey.Convey("Given roster entries", t, func() {
		convey.So(model.Individual{ID: "m-01", Label: "Bruno"}.DisplayName(), convey.ShouldEqual, "Bruno")
		convey.So(model.Individual{ID: "m-02"}.DisplayName(), convey.ShouldEqual, "m-02")
	})
}

func TestStressSample_Value(t *testing.T) {
	convey.Convey("Given stress samples", t, func() {
		convey.Convey("When a weighted score is present", func() {
			w := 6.5
			s := model.StressSample{StressScore: 2, WeightedScore: &w}

			convey.Convey("Then the weighted score wins", func() {
				convey.So(s.Value(), convey.ShouldEqual, 6.5)
			})
		})

		convey.Convey("When only the raw score is present", func() {
			s := model.StressSample{StressScore: 4}

			convey.Convey("Then the raw score is used", func() {
				convey.So(s.Value(), convey.ShouldEqual, 4.0)
			})
		})
	})
}
