package services

import "github.com/zatekoja/careroute/backend/internal/domain/entities"

// AggregateUrgency reduces matched symptoms to one urgency label and score.
// Rules are checked in order and lean towards the higher bucket so that
// several moderately severe symptoms are not under-triaged.
func AggregateUrgency(matches []entities.MatchedSymptom) (entities.UrgencyLevel, int) {
	if len(matches) == 0 {
		return entities.UrgencyLow, entities.MinUrgencyScore
	}

	var highCount, mediumCount, maxScore, sum int
	for _, m := range matches {
		switch m.Urgency {
		case entities.UrgencyHigh:
			highCount++
		case entities.UrgencyMedium:
			mediumCount++
		}
		maxScore = max(maxScore, m.UrgencyScore)
		sum += m.UrgencyScore
	}
	mean := float64(sum) / float64(len(matches))

	switch {
	case highCount >= 2:
		return entities.UrgencyHigh, 10
	case maxScore >= 8:
		return entities.UrgencyHigh, entities.ClampUrgencyScore(maxScore)
	case len(matches) >= 3 && mean >= 6:
		return entities.UrgencyHigh, 8
	case mediumCount >= 2 && maxScore >= 6:
		return entities.UrgencyMedium, 7
	case maxScore >= 5:
		return entities.UrgencyMedium, maxScore
	case len(matches) >= 2 && mean >= 4:
		return entities.UrgencyMedium, 5
	default:
		return entities.UrgencyLow, entities.ClampUrgencyScore(maxScore)
	}
}
