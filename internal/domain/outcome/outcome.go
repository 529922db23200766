// Package outcome holds the pairwise win/loss record built during one
// dominance pass. It is the substrate for David's Score and is append-only
// while the pass runs.
package outcome

import (
	"sort"

	"github.com/okian/behavmetrix/internal/domain/model"
)

// Pair is an ordered (winner, loser) key.
type Pair struct {
	Winner model.IndividualID
	Loser  model.IndividualID
}

// Matrix maps an ordered pair to the list of binary outcomes observed for
// that direction: 1 when the first individual won, 0 when it lost.
type Matrix struct {
	outcomes map[Pair][]uint8
	seen     map[model.IndividualID]struct{}
}

// New creates an empty matrix.
func New() *Matrix {
	return &Matrix{
		outcomes: make(map[Pair][]uint8),
		seen:     make(map[model.IndividualID]struct{}),
	}
}

// Record appends a win for winner over loser and the matching loss in the
// reverse direction.
func (m *Matrix) Record(winner, loser model.IndividualID) {
	fwd := Pair{Winner: winner, Loser: loser}
	rev := Pair{Winner: loser, Loser: winner}
	m.outcomes[fwd] = append(m.outcomes[fwd], 1)
	m.outcomes[rev] = append(m.outcomes[rev], 0)
	m.seen[winner] = struct{}{}
	m.seen[loser] = struct{}{}
}

// Outcomes returns a copy of the outcome list recorded for (i, j).
func (m *Matrix) Outcomes(i, j model.IndividualID) []uint8 {
	src := m.outcomes[Pair{Winner: i, Loser: j}]
	out := make([]uint8, len(src))
	copy(out, src)
	return out
}

// Wins counts encounters in which i beat j.
func (m *Matrix) Wins(i, j model.IndividualID) int {
	n := 0
	for _, o := range m.outcomes[Pair{Winner: i, Loser: j}] {
		if o == 1 {
			n++
		}
	}
	return n
}

// Encounters counts all recorded encounters between i and j.
func (m *Matrix) Encounters(i, j model.IndividualID) int {
	return len(m.outcomes[Pair{Winner: i, Loser: j}])
}

// Proportion is the fraction of encounters in which i beat j, 0 when the
// pair was never observed.
func (m *Matrix) Proportion(i, j model.IndividualID) float64 {
	n := m.Encounters(i, j)
	if n == 0 {
		return 0
	}
	return float64(m.Wins(i, j)) / float64(n)
}

// Individuals returns every individual that appears in the matrix, sorted.
func (m *Matrix) Individuals() []model.IndividualID {
	ids := make([]model.IndividualID, 0, len(m.seen))
	for id := range m.seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
	return ids
}

// Pairs returns every ordered pair with at least one recorded win, sorted
// by winner then loser.
func (m *Matrix) Pairs() []Pair {
	pairs := make([]Pair, 0, len(m.outcomes))
	for p := range m.outcomes {
		if m.Wins(p.Winner, p.Loser) > 0 {
			pairs = append(pairs, p)
		}
	}
	sort.Slice(pairs, func(a, b int) bool {
		if pairs[a].Winner != pairs[b].Winner {
			return pairs[a].Winner < pairs[b].Winner
		}
		return pairs[a].Loser < pairs[b].Loser
	})
	return pairs
}

// Len returns the number of individuals in the matrix.
func (m *Matrix) Len() int { return len(m.seen) }

// Empty reports whether no encounter was recorded.
func (m *Matrix) Empty() bool { return len(m.seen) == 0 }
