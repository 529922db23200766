// Package davids derives a normalized dominance index from the pairwise
// outcome matrix.
//
// The index is a three-tier approximation of the classical David's Score:
// direct win/loss proportions plus one-hop indirect proportions through a
// third individual. Longer indirect paths are deliberately not followed;
// colonies are small and the one-hop form is what downstream reports are
// calibrated against.
package davids

import (
	"math"

	"github.com/okian/behavmetrix/internal/domain/model"
	"github.com/okian/behavmetrix/internal/domain/outcome"
)

// Components breaks a raw score into its tiers.
type Components struct {
	DirectWins     float64 `json:"direct_wins"`
	DirectLosses   float64 `json:"direct_losses"`
	IndirectWins   float64 `json:"indirect_wins"`
	IndirectLosses float64 `json:"indirect_losses"`
}

// Raw returns the unnormalized score.
func (c Components) Raw() float64 {
	return (c.DirectWins + c.IndirectWins) - (c.DirectLosses + c.IndirectLosses)
}

// Breakdown computes the tiers for every individual in m:
//
//	direct_wins(i)     = Σ_j p_ij
//	direct_losses(i)   = Σ_j p_ji
//	indirect_wins(i)   = Σ_j Σ_k p_ij·p_jk   (k ∉ {i, j})
//	indirect_losses(i) = Σ_j Σ_k p_ji·p_kj   (k ∉ {i, j})
func Breakdown(m *outcome.Matrix) map[model.IndividualID]Components {
	ids := m.Individuals()
	out := make(map[model.IndividualID]Components, len(ids))
	if len(ids) == 0 {
		return out
	}

	n := len(ids)
	p := make([][]float64, n)
	for a := range ids {
		p[a] = make([]float64, n)
		for b := range ids {
			if a != b {
				p[a][b] = m.Proportion(ids[a], ids[b])
			}
		}
	}

	for i := 0; i < n; i++ {
		var c Components
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			c.DirectWins += p[i][j]
			c.DirectLosses += p[j][i]
			for k := 0; k < n; k++ {
				if k == i || k == j {
					continue
				}
				c.IndirectWins += p[i][j] * p[j][k]
				c.IndirectLosses += p[j][i] * p[k][j]
			}
		}
		out[ids[i]] = c
	}
	return out
}

// Raw returns the unnormalized score of every individual in m.
func Raw(m *outcome.Matrix) map[model.IndividualID]float64 {
	parts := Breakdown(m)
	out := make(map[model.IndividualID]float64, len(parts))
	for id, c := range parts {
		out[id] = c.Raw()
	}
	return out
}

// Scores min-max scales the raw scores to [0, 1]. When every raw score is
// equal the span is taken as 1, so everyone maps to 0. An empty matrix
// yields an empty map.
func Scores(m *outcome.Matrix) map[model.IndividualID]float64 {
	raw := Raw(m)
	out := make(map[model.IndividualID]float64, len(raw))
	if len(raw) == 0 {
		return out
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range raw {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	for id, v := range raw {
		out[id] = (v - lo) / span
	}
	return out
}
