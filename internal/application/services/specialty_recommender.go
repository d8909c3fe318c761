package services

import (
	"sort"

	"github.com/zatekoja/careroute/backend/internal/domain/entities"
)

type specialtyTally struct {
	name   string
	weight float64
}

// RecommendSpecialties weights each match by match score scaled with its
// urgency score, sums the weight per declared specialty and returns the
// three heaviest. Ties keep first-seen order.
func RecommendSpecialties(matches []entities.MatchedSymptom) []string {
	index := make(map[string]int)
	var weights []specialtyTally

	for _, m := range matches {
		w := float64(m.MatchScore) * (1 + float64(m.UrgencyScore)/10)
		for _, sp := range m.Specialties {
			i, ok := index[sp]
			if !ok {
				i = len(weights)
				index[sp] = i
				weights = append(weights, specialtyTally{name: sp})
			}
			weights[i].weight += w
		}
	}

	if len(weights) == 0 {
		return []string{entities.DefaultSpecialty}
	}

	sort.SliceStable(weights, func(i, j int) bool {
		return weights[i].weight > weights[j].weight
	})

	n := min(len(weights), entities.MaxSpecialties)
	out := make([]string, n)
	for i := range n {
		out[i] = weights[i].name
	}
	return out
}
