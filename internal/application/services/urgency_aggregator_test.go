package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zatekoja/careroute/backend/internal/domain/entities"
)

func match(id string, urgency entities.UrgencyLevel, score int, specialties ...string) entities.MatchedSymptom {
	return entities.MatchedSymptom{
		Symptom: &entities.Symptom{
			ID:           id,
			Name:         id,
			Urgency:      urgency,
			UrgencyScore: score,
			Specialties:  specialties,
		},
		MatchScore: entities.MatchScoreExact,
	}
}

func TestAggregateUrgency_Rules(t *testing.T) {
	H, M, L := entities.UrgencyHigh, entities.UrgencyMedium, entities.UrgencyLow

	tests := []struct {
		name      string
		matches   []entities.MatchedSymptom
		wantLabel entities.UrgencyLevel
		wantScore int
	}{
		{"no matches", nil, L, 1},
		{"two HIGH labels", []entities.MatchedSymptom{match("a", H, 7), match("b", H, 7)}, H, 10},
		{"single score of 9", []entities.MatchedSymptom{match("a", H, 9)}, H, 9},
		{"score 8 under a MEDIUM label", []entities.MatchedSymptom{match("a", M, 8)}, H, 8},
		{"three averaging six", []entities.MatchedSymptom{match("a", M, 7), match("b", M, 6), match("c", L, 5)}, H, 8},
		{"two MEDIUM with max six", []entities.MatchedSymptom{match("a", M, 6), match("b", M, 5)}, M, 7},
		{"single MEDIUM five", []entities.MatchedSymptom{match("a", M, 5)}, M, 5},
		{"two averaging four", []entities.MatchedSymptom{match("a", L, 4), match("b", L, 4)}, M, 5},
		{"single LOW", []entities.MatchedSymptom{match("a", L, 3)}, L, 3},
		{"two LOW below average", []entities.MatchedSymptom{match("a", L, 2), match("b", L, 3)}, L, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, score := AggregateUrgency(tt.matches)
			assert.Equal(t, tt.wantLabel, label)
			assert.Equal(t, tt.wantScore, score)
		})
	}
}

func TestAggregateUrgency_AddingSevereSymptomNeverLowersScore(t *testing.T) {
	bases := [][]entities.MatchedSymptom{
		nil,
		{match("a", entities.UrgencyLow, 2)},
		{match("a", entities.UrgencyMedium, 6), match("b", entities.UrgencyMedium, 5)},
		{match("a", entities.UrgencyHigh, 10)},
		{match("a", entities.UrgencyHigh, 9), match("b", entities.UrgencyLow, 1)},
	}
	for _, base := range bases {
		_, before := AggregateUrgency(base)
		for severe := 8; severe <= 10; severe++ {
			extended := append(append([]entities.MatchedSymptom(nil), base...), match("x", entities.UrgencyHigh, severe))
			_, after := AggregateUrgency(extended)
			assert.GreaterOrEqual(t, after, before)
		}
	}
}

func TestAggregateUrgency_ScoreAlwaysInRange(t *testing.T) {
	for s := 1; s <= 10; s++ {
		for _, l := range []entities.UrgencyLevel{entities.UrgencyHigh, entities.UrgencyMedium, entities.UrgencyLow} {
			_, score := AggregateUrgency([]entities.MatchedSymptom{match("a", l, s)})
			assert.GreaterOrEqual(t, score, entities.MinUrgencyScore)
			assert.LessOrEqual(t, score, entities.MaxUrgencyScore)
		}
	}
}
