package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zatekoja/careroute/backend/internal/domain/entities"
)

func TestRecommendSpecialties(t *testing.T) {
	t.Run("no matches", func(t *testing.T) {
		assert.Equal(t, []string{entities.DefaultSpecialty}, RecommendSpecialties(nil))
	})

	t.Run("matches without specialties", func(t *testing.T) {
		assert.Equal(t, []string{entities.DefaultSpecialty}, RecommendSpecialties([]entities.MatchedSymptom{match("a", entities.UrgencyLow, 2)}))
	})

	t.Run("weights by urgency and accumulates", func(t *testing.T) {
		matches := []entities.MatchedSymptom{
			match("a", entities.UrgencyLow, 2, "Dermatology", "General Medicine"),
			match("b", entities.UrgencyHigh, 9, "Cardiology"),
			match("c", entities.UrgencyMedium, 5, "General Medicine"),
		}
		// Dermatology 12, General Medicine 12+15, Cardiology 19
		assert.Equal(t, []string{"General Medicine", "Cardiology", "Dermatology"}, RecommendSpecialties(matches))
	})

	t.Run("top three with ties in first-seen order", func(t *testing.T) {
		matches := []entities.MatchedSymptom{
			match("a", entities.UrgencyLow, 5, "A", "B", "C", "D"),
		}
		assert.Equal(t, []string{"A", "B", "C"}, RecommendSpecialties(matches))
	})

	t.Run("substring matches weigh less", func(t *testing.T) {
		weak := match("a", entities.UrgencyHigh, 9, "Cardiology")
		weak.MatchScore = entities.MatchScoreSubstring
		strong := match("b", entities.UrgencyHigh, 9, "Pulmonology")
		assert.Equal(t, []string{"Pulmonology", "Cardiology"}, RecommendSpecialties([]entities.MatchedSymptom{weak, strong}))
	})
}
