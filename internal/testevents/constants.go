package testevents

import "time"

// Behavior codes emitted by the generator.
const (
	CodeAggression = "AGG"
	CodeDominance  = "DOM"
	CodeSubmission = "SUB"
	CodeGroom      = "GROOM"
	CodePlay       = "PLAY"
	CodeEnrichment = "ENRICH"
)

// Behavior categories emitted by the generator.
const (
	CategoryAgonistic   = "Agonistic"
	CategoryAffiliative = "Affiliative"
	CategoryPlay        = "Play"
	CategoryEnrichment  = "Enrichment"
)

// Generator defaults.
const (
	DefaultColonies        = 1
	DefaultIndividuals     = 12
	DefaultInteractions    = 400
	DefaultDays            = 14
	DefaultNoise           = 0.1
	DefaultSeed            = 1
	DefaultNonDyadicShare  = 0.2
	DefaultDuplicateRate   = 0.01
	DefaultEnrichmentEvery = 2
)

const (
	day                  = 24 * time.Hour
	percentageMultiplier = 100
	maxStressScore       = 10
)
