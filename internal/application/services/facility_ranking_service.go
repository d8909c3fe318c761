package services

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zatekoja/careroute/backend/internal/catalog"
	"github.com/zatekoja/careroute/backend/internal/domain/entities"
	"github.com/zatekoja/careroute/backend/pkg/geo"
)

const (
	// MaxRankedFacilities caps the result of a facility search
	MaxRankedFacilities = 15

	MinEmergencyResults     = 1
	MaxEmergencyResults     = 20
	DefaultEmergencyResults = 5

	DefaultMaxDistanceKm = 20.0
)

// Score weights
const (
	specialtyWeight        = 35.0
	noSpecialtyScore       = 20.0
	ratingWeight           = 20.0
	emergencyBonus         = 15.0
	availabilityBonus      = 5.0
	distancePenaltyPerKm   = 2.0
	distancePenaltyStartKm = 20.0
	maxMatchScore          = 100.0
)

// DefaultLocation is used whenever the caller gives no usable coordinate
var DefaultLocation = geo.Point{Latitude: 12.9716, Longitude: 77.5946}

// FacilityRankingService filters and scores catalog facilities for a request.
// It holds no mutable state.
type FacilityRankingService struct {
	catalog         *catalog.FacilityCatalog
	defaultLocation geo.Point
	maxDistanceKm   float64
}

// NewFacilityRankingService creates a ranker. Non-positive maxDistanceKm
// selects DefaultMaxDistanceKm.
func NewFacilityRankingService(c *catalog.FacilityCatalog, defaultLocation geo.Point, maxDistanceKm float64) *FacilityRankingService {
	if !defaultLocation.Valid() {
		defaultLocation = DefaultLocation
	}
	if maxDistanceKm <= 0 {
		maxDistanceKm = DefaultMaxDistanceKm
	}
	return &FacilityRankingService{
		catalog:         c,
		defaultLocation: defaultLocation,
		maxDistanceKm:   maxDistanceKm,
	}
}

// Rank returns at most MaxRankedFacilities facilities ordered by match score.
// HIGH urgency restricts results to emergency-capable facilities and lifts
// the distance cap. An empty result is not an error.
func (s *FacilityRankingService) Rank(ctx context.Context, req entities.FacilitySearchRequest) []entities.RankedFacility {
	_, span := tracer.Start(ctx, "FacilityRankingService.Rank")
	defer span.End()

	origin := s.resolveLocation(req.Location)
	high := req.Urgency == entities.UrgencyHigh
	requested := dedupeFold(req.Specialties)

	maxDistance := s.maxDistanceKm
	if req.Filters.MaxDistanceKm != nil && *req.Filters.MaxDistanceKm > 0 {
		maxDistance = *req.Filters.MaxDistanceKm
	}

	ranked := make([]entities.RankedFacility, 0)
	for _, f := range s.catalog.All() {
		if !passesFilters(f, requested, req.Filters, high) {
			continue
		}

		// The cap applies to the exact distance; rounding is for output only
		raw := geo.Distance(origin, f.Location)
		if raw > maxDistance && !high {
			continue
		}
		distance := geo.Round2(raw)

		breakdown := scoreFacility(f, requested, distance, high)
		ranked = append(ranked, entities.RankedFacility{
			Facility:             *f,
			DistanceKm:           distance,
			EstimatedTimeMinutes: geo.TravelTimeMinutes(raw, string(req.Urgency)),
			MatchScore:           geo.Round2(clamp(breakdown.Total(), 0, maxMatchScore)),
			ScoreBreakdown:       &breakdown,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].MatchScore > ranked[j].MatchScore
	})

	survivors := len(ranked)
	if len(ranked) > MaxRankedFacilities {
		ranked = ranked[:MaxRankedFacilities]
	}

	span.SetAttributes(
		attribute.Int("ranking.survivors", survivors),
		attribute.Int("ranking.returned", len(ranked)),
		attribute.String("ranking.urgency", string(req.Urgency)),
	)
	log.Debug().
		Int("catalog", s.catalog.Len()).
		Int("survivors", survivors).
		Int("returned", len(ranked)).
		Strs("specialties", requested).
		Str("urgency", string(req.Urgency)).
		Msg("facility ranking complete")

	return ranked
}

// NearestEmergency returns emergency-capable facilities nearest first.
// maxResults is clamped to [MinEmergencyResults, MaxEmergencyResults].
func (s *FacilityRankingService) NearestEmergency(ctx context.Context, location *geo.Point, maxResults int) []entities.RankedFacility {
	_, span := tracer.Start(ctx, "FacilityRankingService.NearestEmergency")
	defer span.End()

	maxResults = max(MinEmergencyResults, min(maxResults, MaxEmergencyResults))
	origin := s.resolveLocation(location)

	type candidate struct {
		facility *entities.Facility
		distance float64
	}
	candidates := make([]candidate, 0)
	for _, f := range s.catalog.All() {
		if !f.EmergencyAvailable {
			continue
		}
		candidates = append(candidates, candidate{facility: f, distance: geo.Distance(origin, f.Location)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})
	if len(candidates) > maxResults {
		candidates = candidates[:maxResults]
	}

	out := make([]entities.RankedFacility, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, entities.RankedFacility{
			Facility:             *c.facility,
			DistanceKm:           geo.Round2(c.distance),
			EstimatedTimeMinutes: geo.TravelTimeMinutes(c.distance, string(entities.UrgencyHigh)),
		})
	}

	span.SetAttributes(attribute.Int("ranking.returned", len(out)))
	return out
}

// DefaultLocation returns the coordinate substituted for missing locations
func (s *FacilityRankingService) DefaultLocation() geo.Point {
	return s.defaultLocation
}

func (s *FacilityRankingService) resolveLocation(p *geo.Point) geo.Point {
	if p == nil || !p.Valid() {
		return s.defaultLocation
	}
	return *p
}

func passesFilters(f *entities.Facility, requested []string, filters entities.FacilityFilters, high bool) bool {
	if len(requested) > 0 && countSpecialties(f, requested) == 0 {
		return false
	}
	if filters.Type != "" && !strings.EqualFold(filters.Type, f.Type) {
		return false
	}
	if (filters.EmergencyOnly || high) && !f.EmergencyAvailable {
		return false
	}
	if filters.Open24x7 && !f.Open24x7 {
		return false
	}
	return true
}

func scoreFacility(f *entities.Facility, requested []string, distance float64, high bool) entities.ScoreBreakdown {
	var b entities.ScoreBreakdown

	if len(requested) == 0 {
		b.Specialty = noSpecialtyScore
	} else {
		b.Specialty = geo.Round2(specialtyWeight * float64(countSpecialties(f, requested)) / float64(len(requested)))
	}

	b.Distance = geo.Round2(DistanceScore(distance))
	b.Rating = geo.Round2(clamp(f.Rating, 0, 5) / 5 * ratingWeight)

	if high && f.EmergencyAvailable {
		b.Emergency = emergencyBonus
	}
	if f.Open24x7 {
		b.Availability = availabilityBonus
	}
	return b
}

// DistanceScore maps a distance onto the stepped 0..30 proximity scale.
// Past 20 km it decays by 2 points per km and floors at zero.
func DistanceScore(km float64) float64 {
	switch {
	case km <= 2:
		return 30
	case km <= 5:
		return 25
	case km <= 10:
		return 20
	case km <= 15:
		return 15
	case km <= distancePenaltyStartKm:
		return 10
	default:
		return math.Max(0, 10-(km-distancePenaltyStartKm)*distancePenaltyPerKm)
	}
}

func countSpecialties(f *entities.Facility, requested []string) int {
	n := 0
	for _, sp := range requested {
		if f.HasSpecialty(sp) {
			n++
		}
	}
	return n
}

// dedupeFold trims and removes case-insensitive duplicates, keeping the
// first spelling.
func dedupeFold(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
