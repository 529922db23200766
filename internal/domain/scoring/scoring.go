// Package scoring assembles the dominance result of one analysis pass from
// the rating updater and the David's Score calculator.
package scoring

import (
	"sort"

	"github.com/okian/behavmetrix/internal/domain/davids"
	"github.com/okian/behavmetrix/internal/domain/elo"
	"github.com/okian/behavmetrix/internal/domain/model"
	"github.com/okian/behavmetrix/internal/domain/types"
)

// DominanceResult is rebuilt from scratch on every call and never mutated
// afterwards; the caller decides whether to persist it.
type DominanceResult struct {
	BaseScore        float64                                  `json:"base_score"`
	Ratings          map[model.IndividualID]float64           `json:"ratings"`
	InstabilityFlags []model.IndividualID                     `json:"instability_flags"`
	Alerts           map[model.IndividualID]types.Alert       `json:"alerts"`
	DavidsScores     map[model.IndividualID]float64           `json:"davids_scores"`
	Breakdown        map[model.IndividualID]davids.Components `json:"breakdown,omitempty"`
	Timeline         []elo.TimelineEntry                      `json:"timeline"`
	Processed        int                                      `json:"processed"`
	Skipped          int                                      `json:"skipped"`
}

// IsUnstable reports whether id was flagged during the pass.
func (r *DominanceResult) IsUnstable(id model.IndividualID) bool {
	i := sort.Search(len(r.InstabilityFlags), func(i int) bool { return r.InstabilityFlags[i] >= id })
	return i < len(r.InstabilityFlags) && r.InstabilityFlags[i] == id
}

// Scorer computes a dominance result from a window of events.
type Scorer interface {
	Compute(events []model.BehaviorEvent) *DominanceResult
}

// Engine implements Scorer. It holds only immutable configuration, so one
// Engine may serve concurrent callers.
type Engine struct {
	updater *elo.Updater
}

// NewEngine builds an Engine, failing fast on invalid rating options.
func NewEngine(opts ...elo.Option) (*Engine, error) {
	u, err := elo.New(opts...)
	if err != nil {
		return nil, err
	}
	return &Engine{updater: u}, nil
}

// BaseScore returns the rating unobserved individuals carry.
func (e *Engine) BaseScore() float64 { return e.updater.Config().BaseScore }

// Compute runs the rating pass and derives David's Score from the same
// sorted event sequence, so both are reproducible for identical input.
func (e *Engine) Compute(events []model.BehaviorEvent) *DominanceResult {
	pass := e.updater.Run(events)

	flags := make([]model.IndividualID, 0, len(pass.Flags))
	for id := range pass.Flags {
		flags = append(flags, id)
	}
	sort.Slice(flags, func(a, b int) bool { return flags[a] < flags[b] })

	return &DominanceResult{
		BaseScore:        e.BaseScore(),
		Ratings:          pass.Ratings,
		InstabilityFlags: flags,
		Alerts:           pass.Alerts,
		DavidsScores:     davids.Scores(pass.Matrix),
		Breakdown:        davids.Breakdown(pass.Matrix),
		Timeline:         pass.Timeline,
		Processed:        pass.Processed,
		Skipped:          pass.Skipped,
	}
}

// less returns true if (aRating, aID) should appear before (bRating, bID)
// in the hierarchy (higher ratings first, ties by id asc).
func less(aRating float64, aID model.IndividualID, bRating float64, bID model.IndividualID) bool {
	if aRating != bRating {
		return aRating > bRating
	}
	return aID < bID
}

// Hierarchy ranks every roster member plus every rated individual. Roster
// members without dominance events carry the base score and Observed=false.
// Equal ratings share a rank.
func Hierarchy(res *DominanceResult, roster []model.Individual) []types.Entry {
	labels := make(map[model.IndividualID]string, len(roster))
	entries := make([]types.Entry, 0, len(roster)+len(res.Ratings))
	add := func(id model.IndividualID, label string) {
		if _, dup := labels[id]; dup {
			return
		}
		labels[id] = label
		rating, observed := res.Ratings[id]
		if !observed {
			rating = res.BaseScore
		}
		entries = append(entries, types.Entry{
			IndividualID: id,
			Label:        label,
			Rating:       rating,
			DavidsScore:  res.DavidsScores[id],
			Unstable:     res.IsUnstable(id),
			Observed:     observed,
		})
	}

	for _, ind := range roster {
		if ind.ID == "" {
			continue
		}
		add(ind.ID, ind.DisplayName())
	}
	for id := range res.Ratings {
		add(id, string(id))
	}

	sort.Slice(entries, func(a, b int) bool {
		return less(entries[a].Rating, entries[a].IndividualID, entries[b].Rating, entries[b].IndividualID)
	})
	assignRanksWithTies(entries)
	return entries
}

// assignRanksWithTies gives equal ratings the same rank; the next distinct
// rating skips the positions the tie occupied (1, 2, 2, 4).
func assignRanksWithTies(entries []types.Entry) {
	for i := range entries {
		if i > 0 && entries[i].Rating == entries[i-1].Rating {
			entries[i].Rank = entries[i-1].Rank
			continue
		}
		entries[i].Rank = i + 1
	}
}
