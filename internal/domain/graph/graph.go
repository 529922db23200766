// Package graph builds the directed dominance graph used for rendering.
//
// Every ordered pair with a positive rating difference gets an edge, so the
// graph is complete minus zero-weight edges and building it is O(n²). This
// is a scaling boundary for colonies of tens of individuals, not a defect.
package graph

import (
	"github.com/okian/behavmetrix/internal/domain/model"
)

const defaultBaseScore = 1000.0

// Node is one individual.
type Node struct {
	ID     model.IndividualID `json:"id"`
	Label  string             `json:"label"`
	Rating float64            `json:"rating"`
}

// Edge points from the higher-rated individual to the lower-rated one.
type Edge struct {
	From   model.IndividualID `json:"from"`
	To     model.IndividualID `json:"to"`
	Weight float64            `json:"weight"`
}

// Graph is a directed weighted graph over the roster.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`

	out map[model.IndividualID][]int
}

// Option applies a configuration option to Build.
type Option func(*builder)

type builder struct {
	baseScore float64
}

// WithBaseScore sets the rating used for roster members without a rating.
func WithBaseScore(score float64) Option {
	return func(b *builder) {
		b.baseScore = score
	}
}

// Build creates one node per roster member, in roster order with duplicates
// collapsed, and an edge u→v weighted rating[u]−rating[v] for every pair
// where u is rated strictly higher. Self-loops are never created.
func Build(roster []model.Individual, ratings map[model.IndividualID]float64, opts ...Option) *Graph {
	b := builder{baseScore: defaultBaseScore}
	for _, opt := range opts {
		opt(&b)
	}

	g := &Graph{
		Nodes: make([]Node, 0, len(roster)),
		out:   make(map[model.IndividualID][]int),
	}
	seen := make(map[model.IndividualID]struct{}, len(roster))
	for _, ind := range roster {
		if ind.ID == "" {
			continue
		}
		if _, dup := seen[ind.ID]; dup {
			continue
		}
		seen[ind.ID] = struct{}{}
		r, ok := ratings[ind.ID]
		if !ok {
			r = b.baseScore
		}
		g.Nodes = append(g.Nodes, Node{ID: ind.ID, Label: ind.DisplayName(), Rating: r})
	}

	for _, u := range g.Nodes {
		for _, v := range g.Nodes {
			if u.ID == v.ID {
				continue
			}
			if w := u.Rating - v.Rating; w > 0 {
				g.out[u.ID] = append(g.out[u.ID], len(g.Edges))
				g.Edges = append(g.Edges, Edge{From: u.ID, To: v.ID, Weight: w})
			}
		}
	}
	return g
}

// Successors returns the individuals id dominates, in roster order.
func (g *Graph) Successors(id model.IndividualID) []model.IndividualID {
	idx := g.out[id]
	out := make([]model.IndividualID, 0, len(idx))
	for _, i := range idx {
		out = append(out, g.Edges[i].To)
	}
	return out
}

// Edge returns the edge u→v, if any.
func (g *Graph) Edge(u, v model.IndividualID) (Edge, bool) {
	for _, i := range g.out[u] {
		if g.Edges[i].To == v {
			return g.Edges[i], true
		}
	}
	return Edge{}, false
}
