package testevents

import (
	"runtime"
	"time"

	"github.com/okian/behavmetrix/internal/domain/model"
)

// Config holds configuration for a generation run.
type Config struct {
	Colonies        int       // Number of colonies to generate
	Individuals     int       // Roster size per colony
	Interactions    int       // Behavior records per colony
	Days            int       // Observation span ending at End
	End             time.Time // End of the observation span; zero means now
	Noise           float64   // Probability that an interaction contradicts the latent order
	Seed            uint64    // Equal seeds and End give equal output
	NonDyadicShare  float64   // Share of records that are not dominance interactions
	DuplicateRate   float64   // Probability of re-emitting a record row
	EnrichmentEvery int       // Days between scheduled enrichment sessions
	Workers         int       // Concurrent colony generators
	OutputFile      string    // Output file for snapshots
	LogFile         string    // Log file for run output
	Verify          bool      // Analyze the output and compare with the latent order
	Verbose         bool      // Enable verbose logging
}

// DefaultConfig returns a Config with generator defaults.
func DefaultConfig() *Config {
	return &Config{
		Colonies:        DefaultColonies,
		Individuals:     DefaultIndividuals,
		Interactions:    DefaultInteractions,
		Days:            DefaultDays,
		Noise:           DefaultNoise,
		Seed:            DefaultSeed,
		NonDyadicShare:  DefaultNonDyadicShare,
		DuplicateRate:   DefaultDuplicateRate,
		EnrichmentEvery: DefaultEnrichmentEvery,
		Workers:         runtime.NumCPU(),
	}
}

// Colony is one generated snapshot together with the order it was drawn
// from, strongest first.
type Colony struct {
	Snapshot model.Snapshot
	Latent   []model.IndividualID
}

// Stats holds run statistics.
type Stats struct {
	ColoniesGenerated int
	Individuals       int
	Records           int
	StressSamples     int
	EnrichmentSamples int
	ColoniesVerified  int
	MeanConcordance   float64
	TopMatches        int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
