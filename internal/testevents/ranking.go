package testevents

import (
	"github.com/okian/behavmetrix/internal/domain/model"
	"github.com/okian/behavmetrix/internal/domain/types"
)

// Concordance returns the share of individual pairs that the hierarchy
// orders the same way as the latent order. Individuals missing from either
// side are ignored. It returns 1 when fewer than two individuals are shared.
func Concordance(latent []model.IndividualID, hierarchy []types.Entry) float64 {
	pos := make(map[model.IndividualID]int, len(hierarchy))
	for i, e := range hierarchy {
		pos[e.IndividualID] = i
	}

	ranked := make([]int, 0, len(latent))
	for _, id := range latent {
		if p, ok := pos[id]; ok {
			ranked = append(ranked, p)
		}
	}
	if len(ranked) < 2 {
		return 1
	}

	var agree, total int
	for i := 0; i < len(ranked); i++ {
		for j := i + 1; j < len(ranked); j++ {
			total++
			if ranked[i] < ranked[j] {
				agree++
			}
		}
	}
	return float64(agree) / float64(total)
}

// TopMatch reports whether the hierarchy leader is the latent leader.
func TopMatch(latent []model.IndividualID, hierarchy []types.Entry) bool {
	return len(latent) > 0 && len(hierarchy) > 0 && hierarchy[0].IndividualID == latent[0]
}
