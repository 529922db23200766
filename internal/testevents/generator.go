package testevents

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/okian/behavmetrix/internal/domain/model"
	"github.com/okian/behavmetrix/pkg/logger"
)

// ErrInvalidConfig is returned for generator settings that cannot produce a colony.
var ErrInvalidConfig = errors.New("invalid generator config")

func validate(cfg *Config) error {
	switch {
	case cfg.Colonies < 1:
		return fmt.Errorf("%w: colonies must be positive", ErrInvalidConfig)
	case cfg.Individuals < 2:
		return fmt.Errorf("%w: a colony needs at least two individuals", ErrInvalidConfig)
	case cfg.Interactions < 0:
		return fmt.Errorf("%w: interactions must not be negative", ErrInvalidConfig)
	case cfg.Days < 1:
		return fmt.Errorf("%w: days must be positive", ErrInvalidConfig)
	case cfg.Noise < 0 || cfg.Noise > 1:
		return fmt.Errorf("%w: noise must be within [0,1]", ErrInvalidConfig)
	case cfg.NonDyadicShare < 0 || cfg.NonDyadicShare > 1:
		return fmt.Errorf("%w: non-dyadic share must be within [0,1]", ErrInvalidConfig)
	case cfg.DuplicateRate < 0 || cfg.DuplicateRate > 1:
		return fmt.Errorf("%w: duplicate rate must be within [0,1]", ErrInvalidConfig)
	}
	return nil
}

// Generate draws cfg.Colonies colonies concurrently. Colony i depends only on
// the seed and i, so the output is stable for a seed regardless of workers.
func Generate(ctx context.Context, cfg *Config, stats *Stats) ([]Colony, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	end := cfg.End
	if end.IsZero() {
		end = time.Now().UTC().Truncate(time.Second)
	}
	logger.Get().Info(ctx, "generating colonies",
		logger.Int("colonies", cfg.Colonies),
		logger.Int("individuals", cfg.Individuals),
		logger.Int("interactions", cfg.Interactions),
		logger.Float64("noise", cfg.Noise),
	)

	type result struct {
		index  int
		colony Colony
		err    error
	}
	results := make(chan result, cfg.Colonies)
	indices := make(chan int)

	workers := minInt(max(cfg.Workers, 1), cfg.Colonies)
	for w := 0; w < workers; w++ {
		go func() {
			for i := range indices {
				if err := ctx.Err(); err != nil {
					results <- result{index: i, err: err}
					continue
				}
				c, err := generateColony(cfg, i, end)
				results <- result{index: i, colony: c, err: err}
			}
		}()
	}
	go func() {
		defer close(indices)
		for i := 0; i < cfg.Colonies; i++ {
			indices <- i
		}
	}()

	out := make([]Colony, cfg.Colonies)
	var firstErr error
	for n := 0; n < cfg.Colonies; n++ {
		r := <-results
		if r.err != nil && firstErr == nil {
			firstErr = fmt.Errorf("colony %d: %w", r.index, r.err)
		}
		out[r.index] = r.colony
	}
	if firstErr != nil {
		return nil, firstErr
	}

	if stats != nil {
		for i := range out {
			s := &out[i].Snapshot
			stats.ColoniesGenerated++
			stats.Individuals += len(s.Roster)
			stats.Records += len(s.Records)
			stats.StressSamples += len(s.Stress)
			stats.EnrichmentSamples += len(s.Enrichment)
		}
	}
	logger.Get().Info(ctx, "generated colonies", logger.Int("count", len(out)))
	return out, nil
}

// generateColony draws one colony. The latent order is the roster order.
func generateColony(cfg *Config, index int, end time.Time) (Colony, error) {
	var seed [32]byte
	binary.LittleEndian.PutUint64(seed[0:], cfg.Seed)
	binary.LittleEndian.PutUint64(seed[8:], uint64(index))
	src := rand.NewChaCha8(seed)
	rng := rand.New(src)

	name := fmt.Sprintf("colony-%02d", index+1)
	start := end.Add(-time.Duration(cfg.Days) * day)

	roster := make([]model.Individual, cfg.Individuals)
	latent := make([]model.IndividualID, cfg.Individuals)
	for i := range roster {
		id, err := uuid.NewRandomFromReader(src)
		if err != nil {
			return Colony{}, fmt.Errorf("individual id: %w", err)
		}
		roster[i] = model.Individual{ID: model.IndividualID(id.String()), Label: fmt.Sprintf("%s-%02d", name, i+1)}
		latent[i] = roster[i].ID
	}

	g := &colonyGen{cfg: cfg, rng: rng, roster: roster, start: start, end: end}
	snap := model.Snapshot{
		Colony:     name,
		TakenAt:    end,
		Roster:     roster,
		Records:    g.records(name),
		Stress:     g.stress(),
		Enrichment: g.enrichment(),
	}
	return Colony{Snapshot: snap, Latent: latent}, nil
}

type colonyGen struct {
	cfg    *Config
	rng    *rand.Rand
	roster []model.Individual
	start  time.Time
	end    time.Time
}

func (g *colonyGen) at() time.Time {
	span := g.end.Sub(g.start)
	return g.start.Add(time.Duration(g.rng.Int64N(int64(span)))).Truncate(time.Second)
}

// pair returns two distinct roster positions, stronger first.
func (g *colonyGen) pair() (int, int) {
	n := len(g.roster)
	a := g.rng.IntN(n)
	b := g.rng.IntN(n - 1)
	if b >= a {
		b++
	}
	if a > b {
		a, b = b, a
	}
	return a, b
}

func (g *colonyGen) records(colony string) []model.LogRecord {
	out := make([]model.LogRecord, 0, g.cfg.Interactions)
	for n := 0; n < g.cfg.Interactions; n++ {
		rec := model.LogRecord{
			RecordID:  fmt.Sprintf("%s-%06d", colony, n+1),
			Timestamp: g.at(),
		}
		if g.rng.Float64() < g.cfg.NonDyadicShare {
			g.affiliative(&rec)
		} else {
			g.interaction(&rec)
		}
		out = append(out, rec)
		if g.rng.Float64() < g.cfg.DuplicateRate {
			out = append(out, rec)
		}
	}
	return out
}

// interaction fills rec with a dominance interaction whose winner is the
// stronger party unless noise flips it.
func (g *colonyGen) interaction(rec *model.LogRecord) {
	strong, weak := g.pair()
	winner, loser := g.roster[strong].ID, g.roster[weak].ID
	if g.rng.Float64() < g.cfg.Noise {
		winner, loser = loser, winner
	}
	rec.Category = CategoryAgonistic
	switch p := g.rng.Float64(); {
	case p < 0.7:
		rec.ActorID, rec.ReceiverID, rec.BehaviorCode = winner, loser, CodeAggression
	case p < 0.8:
		// Older logging revision.
		rec.AnimalID, rec.InteractionPartnerID, rec.BehaviorCode = winner, loser, CodeDominance
	default:
		rec.ActorID, rec.ReceiverID, rec.BehaviorCode = loser, winner, CodeSubmission
	}
}

func (g *colonyGen) affiliative(rec *model.LogRecord) {
	actor := g.roster[g.rng.IntN(len(g.roster))].ID
	rec.ActorID = actor
	switch g.rng.IntN(3) {
	case 0:
		a, b := g.pair()
		rec.ActorID, rec.ReceiverID = g.roster[a].ID, g.roster[b].ID
		rec.BehaviorCode, rec.Category = CodeGroom, CategoryAffiliative
	case 1:
		rec.BehaviorCode, rec.Category = CodePlay, CategoryPlay
	default:
		rec.BehaviorCode, rec.Category = CodeEnrichment, CategoryEnrichment
	}
}

// stress emits about one sample per individual every other day. Lower ranked
// individuals score higher and show more indicators.
func (g *colonyGen) stress() []model.StressSample {
	n := len(g.roster)
	var out []model.StressSample
	for d := 0; d < g.cfg.Days; d++ {
		for rank, ind := range g.roster {
			if g.rng.Float64() < 0.5 {
				continue
			}
			pos := float64(rank) / float64(n-1)
			score := 2 + 7*pos + g.rng.NormFloat64()*g.cfg.Noise*3
			s := model.StressSample{
				IndividualID: ind.ID,
				Timestamp:    g.start.Add(time.Duration(d)*day + time.Duration(g.rng.IntN(12)+6)*time.Hour),
				StressScore:  math.Round(math.Max(0, math.Min(maxStressScore, score))*10) / 10,
			}
			if pos > 2.0/3 {
				s.Withdrawal = g.rng.Float64() < 0.6
				s.Pacing = g.rng.Float64() < 0.4
				s.Isolation = g.rng.Float64() < 0.3
			}
			if g.rng.Float64() < 0.2 {
				c := math.Round((5+pos*40+g.rng.Float64()*5)*10) / 10
				s.CortisolLevel = &c
			}
			out = append(out, s)
		}
	}
	return out
}

// enrichment schedules a session every EnrichmentEvery days per individual;
// noise drops sessions, which opens gaps.
func (g *colonyGen) enrichment() []model.EnrichmentSample {
	every := g.cfg.EnrichmentEvery
	if every < 1 {
		every = DefaultEnrichmentEvery
	}
	var out []model.EnrichmentSample
	for _, ind := range g.roster {
		for d := g.rng.IntN(every); d < g.cfg.Days; d += every {
			if g.rng.Float64() < g.cfg.Noise*2 {
				continue
			}
			out = append(out, model.EnrichmentSample{
				IndividualID:    ind.ID,
				Timestamp:       g.start.Add(time.Duration(d)*day + time.Duration(g.rng.IntN(8)+8)*time.Hour),
				ItemID:          fmt.Sprintf("item-%d", g.rng.IntN(5)+1),
				DurationMinutes: float64(5 + g.rng.IntN(41)),
			})
		}
	}
	return out
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
