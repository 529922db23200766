package config_test

import (
	"errors"
	"math"
	"runtime"
	"testing"
	"time"

	"github.com/okian/behavmetrix/internal/config"
	"github.com/okian/behavmetrix/internal/domain/elo"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Source, convey.ShouldEqual, config.SourceSQLite)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.BaseScore, convey.ShouldEqual, 1000.0)
			convey.So(cfg.KFactor, convey.ShouldEqual, 24.0)
			convey.So(cfg.StressAlertThreshold, convey.ShouldEqual, 8.0)
			convey.So(cfg.EnrichmentGapDays, convey.ShouldEqual, 3)
			convey.So(cfg.AffiliativeCode, convey.ShouldEqual, "GROOM")
			convey.So(cfg.WelfareWatchThreshold, convey.ShouldEqual, 60.0)
			convey.So(cfg.WelfareAlertThreshold, convey.ShouldEqual, 40.0)
			convey.So(cfg.MetricsEnabled, convey.ShouldBeTrue)
			convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "behavmetrix")
			convey.So(cfg.MetricsOptions(), convey.ShouldHaveLength, 5)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then durations derive from the day and millisecond fields", func() {
			cfg.StressWindowDays = 2
			cfg.WindowDays = 1
			convey.So(cfg.StressWindow(), convey.ShouldEqual, 48*time.Hour)
			convey.So(cfg.Window(), convey.ShouldEqual, 24*time.Hour)
			convey.So(cfg.AnalysisTimeout(), convey.ShouldEqual, 30*time.Second)
		})

		convey.Convey("Then the default vocabulary is used when none is configured", func() {
			v, err := cfg.Vocabulary()
			convey.So(err, convey.ShouldBeNil)
			convey.So(v, convey.ShouldResemble, elo.DefaultVocabulary())
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with one invalid setting", t, func() {
		cases := map[string]func(*config.Config){
			"unknown source":      func(c *config.Config) { c.Source = "csv" },
			"empty path":          func(c *config.Config) { c.SourcePath = "" },
			"zero workers":        func(c *config.Config) { c.WorkerCount = 0 },
			"zero queue":          func(c *config.Config) { c.QueueSize = 0 },
			"NaN base score":      func(c *config.Config) { c.BaseScore = math.NaN() },
			"zero k":              func(c *config.Config) { c.KFactor = 0 },
			"negative threshold":  func(c *config.Config) { c.InstabilityThreshold = -1 },
			"infinite stress":     func(c *config.Config) { c.StressAlertThreshold = math.Inf(1) },
			"negative window":     func(c *config.Config) { c.StressWindowDays = -1 },
			"zero gap":            func(c *config.Config) { c.EnrichmentGapDays = 0 },
			"empty affiliative":   func(c *config.Config) { c.AffiliativeCode = " " },
			"welfare bands swap":  func(c *config.Config) { c.WelfareAlertThreshold = 70 },
			"NaN welfare watch":   func(c *config.Config) { c.WelfareWatchThreshold = math.NaN() },
			"bad namespace":       func(c *config.Config) { c.MetricsNamespace = "colony-site" },
			"reserved label":      func(c *config.Config) { c.MetricsLabels = map[string]string{"__site": "x"} },
			"unsorted buckets":    func(c *config.Config) { c.MetricsBuckets = []float64{10, 5} },
			"negative timeout":    func(c *config.Config) { c.AnalysisTimeoutMS = -5 },
			"bad vocabulary side": func(c *config.Config) { c.DominanceVocabulary = map[string]string{"AGG": "sideways"} },
		}

		for name, mutate := range cases {
			cfg := config.New()
			mutate(cfg)

			convey.Convey("Then validation fails for "+name, func() {
				err := cfg.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}
