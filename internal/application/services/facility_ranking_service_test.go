package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/careroute/backend/internal/catalog"
	"github.com/zatekoja/careroute/backend/internal/domain/entities"
	"github.com/zatekoja/careroute/backend/pkg/geo"
)

func newRanker(facilities ...entities.Facility) *FacilityRankingService {
	return NewFacilityRankingService(catalog.NewFacilityCatalog(facilities), origin, DefaultMaxDistanceKm)
}

func ids(ranked []entities.RankedFacility) []string {
	out := make([]string, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.ID)
	}
	return out
}

func TestRank_DistanceCapWaivedForHigh(t *testing.T) {
	ranker := newRanker(
		facilityAt("here", origin, true, true, 4, "Cardiology"),
		facilityAt("far", north(25), true, true, 4, "Cardiology"),
	)
	loc := origin

	medium := ranker.Rank(context.Background(), entities.FacilitySearchRequest{
		Specialties: []string{"Cardiology"},
		Location:    &loc,
		Urgency:     entities.UrgencyMedium,
	})
	assert.Equal(t, []string{"here"}, ids(medium))

	high := ranker.Rank(context.Background(), entities.FacilitySearchRequest{
		Specialties: []string{"Cardiology"},
		Location:    &loc,
		Urgency:     entities.UrgencyHigh,
	})
	assert.Equal(t, []string{"here", "far"}, ids(high))
	assert.InDelta(t, 25, high[1].DistanceKm, 0.1)
}

func TestRank_HighNeverReturnsNonEmergency(t *testing.T) {
	ranker := newRanker(
		facilityAt("clinic", origin, false, true, 5, "Cardiology"),
		facilityAt("er", north(3), true, false, 3, "Cardiology"),
		facilityAt("er-no-cardio", north(1), true, true, 5, "Dermatology"),
	)

	got := ranker.Rank(context.Background(), entities.FacilitySearchRequest{
		Specialties: []string{"Cardiology"},
		Urgency:     entities.UrgencyHigh,
	})
	require.Equal(t, []string{"er"}, ids(got))
	for _, r := range got {
		assert.True(t, r.EmergencyAvailable)
	}
	assert.Equal(t, emergencyBonus, got[0].ScoreBreakdown.Emergency)
}

func TestRank_ScoreBreakdown(t *testing.T) {
	ranker := newRanker(facilityAt("a", north(4), true, true, 4.5, "Cardiology", "Neurology"))
	loc := origin

	got := ranker.Rank(context.Background(), entities.FacilitySearchRequest{
		Specialties: []string{"Cardiology", "Orthopedics", "cardiology"},
		Location:    &loc,
		Urgency:     entities.UrgencyMedium,
	})
	require.Len(t, got, 1)

	b := got[0].ScoreBreakdown
	require.NotNil(t, b)
	assert.Equal(t, 17.5, b.Specialty)
	assert.Equal(t, 25.0, b.Distance)
	assert.Equal(t, 18.0, b.Rating)
	assert.Equal(t, 0.0, b.Emergency)
	assert.Equal(t, 5.0, b.Availability)
	assert.Equal(t, 65.5, got[0].MatchScore)
	assert.Equal(t, geo.TravelTimeMinutes(got[0].DistanceKm, "MEDIUM"), got[0].EstimatedTimeMinutes)
}

func TestRank_NoSpecialtiesScoresFlat(t *testing.T) {
	ranker := newRanker(facilityAt("a", origin, false, false, 0, "Dermatology"))

	got := ranker.Rank(context.Background(), entities.FacilitySearchRequest{Urgency: entities.UrgencyLow})
	require.Len(t, got, 1)
	assert.Equal(t, noSpecialtyScore, got[0].ScoreBreakdown.Specialty)
	assert.Equal(t, 50.0, got[0].MatchScore)
}

func TestRank_Filters(t *testing.T) {
	gov := facilityAt("gov", north(1), false, true, 3, "Cardiology")
	gov.Type = entities.FacilityTypeGovernment
	ranker := newRanker(
		gov,
		facilityAt("private-er", north(2), true, false, 3, "Cardiology"),
		facilityAt("private-24", north(3), false, true, 3, "Cardiology"),
	)
	ctx := context.Background()
	base := entities.FacilitySearchRequest{Specialties: []string{"Cardiology"}, Urgency: entities.UrgencyLow}

	req := base
	req.Filters.Type = "government"
	assert.Equal(t, []string{"gov"}, ids(ranker.Rank(ctx, req)))

	req = base
	req.Filters.EmergencyOnly = true
	assert.Equal(t, []string{"private-er"}, ids(ranker.Rank(ctx, req)))

	req = base
	req.Filters.Open24x7 = true
	assert.ElementsMatch(t, []string{"gov", "private-24"}, ids(ranker.Rank(ctx, req)))

	req = base
	limit := 1.5
	req.Filters.MaxDistanceKm = &limit
	assert.Equal(t, []string{"gov"}, ids(ranker.Rank(ctx, req)))
}

func TestRank_CapAndOrdering(t *testing.T) {
	facilities := make([]entities.Facility, 0, 30)
	for i := range 30 {
		facilities = append(facilities, facilityAt(
			fmt.Sprintf("f%02d", i),
			north(float64(i%18)),
			i%3 == 0,
			i%2 == 0,
			float64(i%6),
			"General Medicine",
		))
	}
	ranker := newRanker(facilities...)

	for _, urgency := range []entities.UrgencyLevel{entities.UrgencyHigh, entities.UrgencyMedium, entities.UrgencyLow, "UNKNOWN"} {
		got := ranker.Rank(context.Background(), entities.FacilitySearchRequest{
			Specialties: []string{"General Medicine"},
			Urgency:     urgency,
		})
		assert.LessOrEqual(t, len(got), MaxRankedFacilities)
		for i := 1; i < len(got); i++ {
			assert.GreaterOrEqual(t, got[i-1].MatchScore, got[i].MatchScore)
		}
		for _, r := range got {
			assert.GreaterOrEqual(t, r.MatchScore, 0.0)
			assert.LessOrEqual(t, r.MatchScore, 100.0)
			assert.GreaterOrEqual(t, r.EstimatedTimeMinutes, geo.MinTravelMinutes)
		}
	}
}

func TestRank_TiesKeepCatalogOrder(t *testing.T) {
	ranker := newRanker(
		facilityAt("first", origin, true, true, 4, "ENT"),
		facilityAt("second", origin, true, true, 4, "ENT"),
		facilityAt("third", origin, true, true, 4, "ENT"),
	)
	got := ranker.Rank(context.Background(), entities.FacilitySearchRequest{Specialties: []string{"ENT"}, Urgency: entities.UrgencyMedium})
	assert.Equal(t, []string{"first", "second", "third"}, ids(got))
}

func TestRank_InvalidOrMissingLocationUsesDefault(t *testing.T) {
	ranker := newRanker(facilityAt("a", origin, true, true, 4))
	bad := geo.Point{Latitude: 200, Longitude: 10}

	for _, loc := range []*geo.Point{nil, &bad} {
		got := ranker.Rank(context.Background(), entities.FacilitySearchRequest{Location: loc, Urgency: entities.UrgencyMedium})
		require.Len(t, got, 1)
		assert.Equal(t, 0.0, got[0].DistanceKm)
	}
}

func TestRank_EmptyCatalog(t *testing.T) {
	got := newRanker().Rank(context.Background(), entities.FacilitySearchRequest{Urgency: entities.UrgencyHigh})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDistanceScore(t *testing.T) {
	tests := []struct {
		km   float64
		want float64
	}{
		{0, 30}, {2, 30}, {2.01, 25}, {5, 25}, {10, 20}, {15, 15}, {20, 10},
		{21, 8}, {24.5, 1}, {25, 0}, {100, 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, DistanceScore(tt.km), 1e-9, "km=%v", tt.km)
	}

	prev := DistanceScore(0)
	for km := 0.0; km <= 40; km += 0.25 {
		cur := DistanceScore(km)
		assert.LessOrEqual(t, cur, prev, "km=%v", km)
		prev = cur
	}
}

func TestNearestEmergency_OrderedByDistance(t *testing.T) {
	ranker := newRanker(
		facilityAt("one", north(1), true, false, 2),
		facilityAt("clinic", north(0.5), false, true, 5),
		facilityAt("four", north(4), true, true, 5),
		facilityAt("two", north(2), true, false, 1),
	)
	loc := origin

	got := ranker.NearestEmergency(context.Background(), &loc, 5)
	require.Equal(t, []string{"one", "two", "four"}, ids(got))
	for i, r := range got {
		assert.True(t, r.EmergencyAvailable)
		assert.Nil(t, r.ScoreBreakdown)
		if i > 0 {
			assert.GreaterOrEqual(t, r.DistanceKm, got[i-1].DistanceKm)
		}
	}
	assert.InDelta(t, 1, got[0].DistanceKm, 0.01)
	assert.Equal(t, geo.TravelTimeMinutes(got[2].DistanceKm, "HIGH"), got[2].EstimatedTimeMinutes)
}

func TestNearestEmergency_ClampsMaxResults(t *testing.T) {
	facilities := make([]entities.Facility, 0, 25)
	for i := range 25 {
		facilities = append(facilities, facilityAt(fmt.Sprintf("er%02d", i), north(float64(i)), true, true, 3))
	}
	ranker := newRanker(facilities...)

	assert.Len(t, ranker.NearestEmergency(context.Background(), nil, 0), MinEmergencyResults)
	assert.Len(t, ranker.NearestEmergency(context.Background(), nil, 3), 3)
	assert.Len(t, ranker.NearestEmergency(context.Background(), nil, 99), MaxEmergencyResults)
}

func TestRank_DistanceCapUsesExactDistance(t *testing.T) {
	// Find a point whose distance rounds down to two decimals
	var edge geo.Point
	var exact float64
	for km := 20.001; km < 20.1; km += 0.0005 {
		p := north(km)
		d := geo.Distance(origin, p)
		if d-geo.Round2(d) > 0.001 {
			edge, exact = p, d
			break
		}
	}
	require.NotZero(t, exact)

	ranker := newRanker(
		facilityAt("inside", north(5), false, false, 4, "Cardiology"),
		facilityAt("edge", edge, false, false, 4, "Cardiology"),
	)
	limit := geo.Round2(exact)
	loc := origin

	got := ranker.Rank(context.Background(), entities.FacilitySearchRequest{
		Specialties: []string{"Cardiology"},
		Location:    &loc,
		Urgency:     entities.UrgencyMedium,
		Filters:     entities.FacilityFilters{MaxDistanceKm: &limit},
	})
	assert.Equal(t, []string{"inside"}, ids(got))
}
