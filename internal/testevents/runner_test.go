package testevents

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/behavmetrix/internal/adapters/repository"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRun(t *testing.T) {
	Convey("Given a run that writes and verifies colonies", t, func() {
		cfg := testConfig()
		cfg.Noise = 0.05
		cfg.Verify = true
		cfg.OutputFile = filepath.Join(t.TempDir(), "out", "colonies.json")
		ctx := context.Background()

		stats, err := Run(ctx, cfg)
		So(err, ShouldBeNil)

		Convey("Then the snapshot document is readable by the JSON source", func() {
			data, err := os.ReadFile(cfg.OutputFile)
			So(err, ShouldBeNil)
			src, err := repository.NewJSONSource(data)
			So(err, ShouldBeNil)
			names, err := src.Colonies(ctx)
			So(err, ShouldBeNil)
			So(names, ShouldResemble, []string{"colony-01", "colony-02", "colony-03"})
		})

		Convey("Then analysis recovers the latent order", func() {
			So(stats.ColoniesVerified, ShouldEqual, 3)
			So(stats.MeanConcordance, ShouldBeGreaterThan, 0.7)
		})
	})
}
