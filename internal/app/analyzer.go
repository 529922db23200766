// Package service wires the analytics engines into one analysis pass and
// runs passes for many colonies on the worker pool.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/behavmetrix/internal/config"
	"github.com/okian/behavmetrix/internal/domain/analysis"
	"github.com/okian/behavmetrix/internal/domain/colony"
	"github.com/okian/behavmetrix/internal/domain/elo"
	"github.com/okian/behavmetrix/internal/domain/graph"
	"github.com/okian/behavmetrix/internal/domain/model"
	"github.com/okian/behavmetrix/internal/domain/normalize"
	"github.com/okian/behavmetrix/internal/domain/scoring"
	"github.com/okian/behavmetrix/internal/domain/welfare"
	"github.com/okian/behavmetrix/pkg/logger"
	"github.com/okian/behavmetrix/pkg/metrics"
)

// Analyzer runs every engine over one snapshot. It holds only immutable
// configuration, so one Analyzer serves all workers.
type Analyzer struct {
	normalizer *normalize.Normalizer
	scorer     *scoring.Engine
	stress     *welfare.StressEngine
	enrichment *welfare.EnrichmentEngine
	flags      *welfare.FlagEngine

	affiliative string
	heatmaps    bool
	clock       func() time.Time
	logger      logger.Logger

	eloOpts    []elo.Option
	stressOpts []welfare.StressOption
	enrichOpts []welfare.EnrichmentOption
	flagOpts   []welfare.FlagOption
}

// AnalyzerOption applies a configuration option to the Analyzer.
type AnalyzerOption func(*Analyzer)

// WithEloOptions configures the rating updater.
func WithEloOptions(opts ...elo.Option) AnalyzerOption {
	return func(a *Analyzer) {
		a.eloOpts = append(a.eloOpts, opts...)
	}
}

// WithStressOptions configures the stress engine.
func WithStressOptions(opts ...welfare.StressOption) AnalyzerOption {
	return func(a *Analyzer) {
		a.stressOpts = append(a.stressOpts, opts...)
	}
}

// WithEnrichmentOptions configures the enrichment engine.
func WithEnrichmentOptions(opts ...welfare.EnrichmentOption) AnalyzerOption {
	return func(a *Analyzer) {
		a.enrichOpts = append(a.enrichOpts, opts...)
	}
}

// WithFlagOptions configures the welfare flag thresholds.
func WithFlagOptions(opts ...welfare.FlagOption) AnalyzerOption {
	return func(a *Analyzer) {
		a.flagOpts = append(a.flagOpts, opts...)
	}
}

// WithAffiliativeCode sets the behavior whose colony share is reported.
func WithAffiliativeCode(code string) AnalyzerOption {
	return func(a *Analyzer) {
		if code != "" {
			a.affiliative = code
		}
	}
}

// WithHeatmaps enables per-individual category/weekday heatmaps.
func WithHeatmaps(enabled bool) AnalyzerOption {
	return func(a *Analyzer) {
		a.heatmaps = enabled
	}
}

// WithClock sets the clock used for defaults, windows and staleness.
func WithClock(clock func() time.Time) AnalyzerOption {
	return func(a *Analyzer) {
		if clock != nil {
			a.clock = clock
		}
	}
}

// WithAnalyzerLogger sets the analyzer logger.
func WithAnalyzerLogger(l logger.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// ConfigOptions translates a validated Config into analyzer options.
func ConfigOptions(cfg *config.Config) ([]AnalyzerOption, error) {
	vocab, err := cfg.Vocabulary()
	if err != nil {
		return nil, err
	}
	return []AnalyzerOption{
		WithEloOptions(
			elo.WithBaseScore(cfg.BaseScore),
			elo.WithKFactor(cfg.KFactor),
			elo.WithInstabilityThreshold(cfg.InstabilityThreshold),
			elo.WithVocabulary(vocab),
		),
		WithStressOptions(
			welfare.WithStressThreshold(cfg.StressAlertThreshold),
			welfare.WithWindow(cfg.StressWindow()),
		),
		WithEnrichmentOptions(welfare.WithGapDays(cfg.EnrichmentGapDays)),
		WithFlagOptions(
			welfare.WithWatchThreshold(cfg.WelfareWatchThreshold),
			welfare.WithAlertThreshold(cfg.WelfareAlertThreshold),
		),
		WithAffiliativeCode(cfg.AffiliativeCode),
	}, nil
}

// NewAnalyzer builds an Analyzer, failing fast on invalid engine options.
func NewAnalyzer(opts ...AnalyzerOption) (*Analyzer, error) {
	a := &Analyzer{
		affiliative: colony.DefaultAffiliativeCode,
		heatmaps:    true,
		clock:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logger.Get().Named("analyzer")
	}

	var err error
	a.normalizer = normalize.New(normalize.WithClock(a.clock))
	if a.scorer, err = scoring.NewEngine(a.eloOpts...); err != nil {
		return nil, fmt.Errorf("rating engine: %w", err)
	}
	stressOpts := append([]welfare.StressOption{welfare.WithStressClock(a.clock)}, a.stressOpts...)
	if a.stress, err = welfare.NewStressEngine(stressOpts...); err != nil {
		return nil, fmt.Errorf("stress engine: %w", err)
	}
	enrichOpts := append([]welfare.EnrichmentOption{welfare.WithEnrichmentClock(a.clock)}, a.enrichOpts...)
	if a.enrichment, err = welfare.NewEnrichmentEngine(enrichOpts...); err != nil {
		return nil, fmt.Errorf("enrichment engine: %w", err)
	}
	if a.flags, err = welfare.NewFlagEngine(a.flagOpts...); err != nil {
		return nil, fmt.Errorf("welfare flags: %w", err)
	}
	return a, nil
}

// Analyze runs one full pass over snap. The snapshot is read, never
// modified. Cancellation is checked before each stage; a canceled pass
// returns no partial report.
func (a *Analyzer) Analyze(ctx context.Context, snap model.Snapshot) (*analysis.Report, error) { //nolint:gocritic // hugeParam: snapshots are values
	start := time.Now()
	rep, err := a.analyze(ctx, snap)
	latency := float64(time.Since(start).Milliseconds())
	if err != nil {
		status := metrics.StatusError
		if ctx.Err() != nil {
			status = metrics.StatusCanceled
		}
		metrics.RecordRun(status, latency)
		return nil, fmt.Errorf("analyze %s: %w", snap.Colony, err)
	}
	rep.Duration = time.Since(start)

	metrics.RecordRun(metrics.StatusOK, latency)
	metrics.RecordEvents(rep.Dominance.Processed, rep.Dominance.Skipped)
	metrics.RecordRecords(rep.Normalization.Duplicates, rep.Normalization.MissingActor)
	for kind, n := range rep.AlertCounts() {
		metrics.RecordAlerts(string(kind), n)
	}
	metrics.UpdateColony(snap.Colony, len(rep.Hierarchy), rep.Unstable())

	a.logger.Info(ctx, "analysis complete",
		logger.String("run_id", rep.RunID),
		logger.String("colony", snap.Colony),
		logger.Int("records", rep.Normalization.Total),
		logger.Int("rated_events", rep.Dominance.Processed),
		logger.Int("individuals", len(rep.Hierarchy)),
		logger.Int("unstable", rep.Unstable()),
		logger.Int("alerts", len(rep.Alerts)),
		logger.Duration("took", rep.Duration),
	)
	return rep, nil
}

func (a *Analyzer) analyze(ctx context.Context, snap model.Snapshot) (*analysis.Report, error) { //nolint:gocritic // hugeParam: snapshots are values
	rep := &analysis.Report{
		RunID:       uuid.NewString(),
		Colony:      snap.Colony,
		TakenAt:     snap.TakenAt,
		GeneratedAt: a.clock(),
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	events, norm := a.normalizer.Records(snap.Records)
	rep.Normalization = norm
	a.logger.Debug(ctx, "normalized records",
		logger.String("run_id", rep.RunID),
		logger.Int("kept", norm.Kept),
		logger.Int("dyadic", norm.Dyadic),
		logger.Int("duplicates", norm.Duplicates),
	)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rep.Dominance = a.scorer.Compute(events)
	rep.Hierarchy = scoring.Hierarchy(rep.Dominance, snap.Roster)
	nodes := make([]model.Individual, 0, len(rep.Hierarchy))
	for _, e := range rep.Hierarchy {
		nodes = append(nodes, model.Individual{ID: e.IndividualID, Label: e.Label})
	}
	rep.Graph = graph.Build(nodes, rep.Dominance.Ratings, graph.WithBaseScore(a.scorer.BaseScore()))
	a.logger.Debug(ctx, "ranked individuals",
		logger.String("run_id", rep.RunID),
		logger.Int("processed", rep.Dominance.Processed),
		logger.Int("skipped", rep.Dominance.Skipped),
		logger.Int("edges", len(rep.Graph.Edges)),
	)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rep.Behavior = colony.Aggregate(events, colony.WithAffiliativeCode(a.affiliative))
	rep.Progress = colony.Track(distinct(snap.Roster), events)
	if a.heatmaps {
		rep.Heatmaps = make(map[model.IndividualID]map[string]map[string]int, len(rep.Hierarchy))
		for _, e := range rep.Hierarchy {
			if hm := colony.Heatmap(events, e.IndividualID); len(hm) > 0 {
				rep.Heatmaps[e.IndividualID] = hm
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rep.Stress = a.stress.Summarize(a.normalizer.Stress(snap.Stress))
	rep.Enrichment = a.enrichment.Summarize(a.normalizer.Enrichment(snap.Enrichment))
	rep.Welfare = a.flags.Flags(snap.Roster)

	rep.CollectAlerts()
	return rep, nil
}

func distinct(roster []model.Individual) int {
	seen := make(map[model.IndividualID]struct{}, len(roster))
	for _, ind := range roster {
		if ind.ID != "" {
			seen[ind.ID] = struct{}{}
		}
	}
	return len(seen)
}
