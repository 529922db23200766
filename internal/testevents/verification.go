package testevents

import (
	"context"
	"fmt"
	"time"

	service "github.com/okian/behavmetrix/internal/app"
	"github.com/okian/behavmetrix/pkg/logger"
)

// topPerformers is how many leaders are logged per colony in verbose mode.
const topPerformers = 5

// verifyResults analyzes every generated colony in-process and compares the
// resulting hierarchy with the latent order.
func verifyResults(ctx context.Context, config *Config, colonies []Colony, stats *Stats) error {
	log := logger.Get().Named("verify")
	log.Info(ctx, "verifying generated colonies", logger.Int("colonies", len(colonies)))

	end := colonies[0].Snapshot.TakenAt
	a, err := service.NewAnalyzer(
		service.WithClock(func() time.Time { return end }),
		service.WithHeatmaps(false),
		service.WithAnalyzerLogger(log),
	)
	if err != nil {
		return fmt.Errorf("build analyzer: %w", err)
	}

	var sum float64
	for i := range colonies {
		c := &colonies[i]
		rep, err := a.Analyze(ctx, c.Snapshot)
		if err != nil {
			return fmt.Errorf("analyze %s: %w", c.Snapshot.Colony, err)
		}

		tau := Concordance(c.Latent, rep.Hierarchy)
		top := TopMatch(c.Latent, rep.Hierarchy)
		sum += tau
		if top {
			stats.TopMatches++
		}
		stats.ColoniesVerified++

		log.Info(ctx, "colony verified",
			logger.String("colony", c.Snapshot.Colony),
			logger.Float64("concordance", tau),
			logger.Bool("top_match", top),
			logger.Int("alerts", len(rep.Alerts)),
			logger.Int("unstable", rep.Unstable()),
		)
		if config.Verbose {
			for _, e := range rep.Hierarchy[:minInt(topPerformers, len(rep.Hierarchy))] {
				log.Info(ctx, "leader",
					logger.Int("rank", e.Rank),
					logger.String("label", e.Label),
					logger.Float64("rating", e.Rating),
					logger.Float64("davids_score", e.DavidsScore),
				)
			}
		}
	}
	stats.MeanConcordance = sum / float64(len(colonies))
	return nil
}
