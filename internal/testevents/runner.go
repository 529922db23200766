package testevents

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/behavmetrix/internal/domain/model"
	"github.com/okian/behavmetrix/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// Run generates the colonies, writes them as a JSON snapshot document and,
// when asked, verifies that analysis recovers the latent order.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting colony generation",
		logger.Int("colonies", config.Colonies),
		logger.Int("workers", config.Workers),
		logger.Any("seed", config.Seed),
		logger.String("output", config.OutputFile),
		logger.Bool("verify", config.Verify),
	)

	colonies, err := Generate(ctx, config, stats)
	if err != nil {
		return nil, fmt.Errorf("colony generation failed: %w", err)
	}

	filename, err := saveSnapshots(ctx, config, colonies)
	if err != nil {
		return nil, fmt.Errorf("saving snapshots failed: %w", err)
	}
	config.OutputFile = filename

	if config.Verify {
		if err := verifyResults(ctx, config, colonies, stats); err != nil {
			return nil, fmt.Errorf("result verification failed: %w", err)
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)
	return stats, nil
}

// saveSnapshots writes the colonies to config.OutputFile, or to a
// timestamped file when unset, and returns the path written.
func saveSnapshots(ctx context.Context, config *Config, colonies []Colony) (string, error) {
	filename := config.OutputFile
	if filename == "" {
		filename = "generated_colonies_" + time.Now().Format("20060102_150405") + ".json"
	}

	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	snaps := make([]model.Snapshot, len(colonies))
	for i := range colonies {
		snaps[i] = colonies[i].Snapshot
	}
	data, err := json.MarshalIndent(snaps, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshots: %w", err)
	}
	if err := os.WriteFile(filename, append(data, '\n'), filePermission); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	logger.Get().Info(ctx, "snapshots saved to file", logger.String("filename", filename))
	return filename, nil
}

// displayFinalStats logs the run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var recordsPerSecond float64
	if stats.Duration > 0 {
		recordsPerSecond = float64(stats.Records) / stats.Duration.Seconds()
	}

	fields := []logger.Field{
		logger.Int("coloniesGenerated", stats.ColoniesGenerated),
		logger.Int("individuals", stats.Individuals),
		logger.Int("records", stats.Records),
		logger.Int("stressSamples", stats.StressSamples),
		logger.Int("enrichmentSamples", stats.EnrichmentSamples),
		logger.Duration("duration", stats.Duration),
		logger.Float64("recordsPerSecond", recordsPerSecond),
	}
	if stats.ColoniesVerified > 0 {
		fields = append(fields,
			logger.Int("coloniesVerified", stats.ColoniesVerified),
			logger.Float64("meanConcordancePct", stats.MeanConcordance*percentageMultiplier),
			logger.Int("topMatches", stats.TopMatches),
		)
	}
	logger.Get().Info(ctx, "final statistics", fields...)
}
