package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/careroute/backend/internal/domain/entities"
	"github.com/zatekoja/careroute/backend/internal/domain/repositories"
)

const analyticsWriteTimeout = 5 * time.Second

// AnalyticsService records usage counters without blocking requests
type AnalyticsService struct {
	repo repositories.AnalyticsRepository
	// wait is set by tests to run writes inline
	wait bool
}

func NewAnalyticsService(repo repositories.AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{repo: repo}
}

// TrackAnalysis counts one completed analysis
func (s *AnalyticsService) TrackAnalysis(result *entities.AnalysisResult) {
	s.async("analysis", func(ctx context.Context) error {
		if err := s.repo.Incr(ctx, repositories.CounterTotalAnalyses); err != nil {
			return err
		}
		if result.AIPowered {
			if err := s.repo.Incr(ctx, repositories.CounterAIPowered); err != nil {
				return err
			}
		}
		if err := s.repo.IncrGroup(ctx, repositories.GroupUrgency, string(result.Urgency)); err != nil {
			return err
		}
		return s.repo.IncrGroup(ctx, repositories.GroupLanguage, string(result.Language))
	})
}

// TrackFacilitySearch counts one ranked facility search
func (s *AnalyticsService) TrackFacilitySearch() {
	s.async("facility_search", func(ctx context.Context) error {
		return s.repo.Incr(ctx, repositories.CounterFacilitySearches)
	})
}

// TrackEmergencyLookup counts one nearest-emergency lookup
func (s *AnalyticsService) TrackEmergencyLookup() {
	s.async("emergency_lookup", func(ctx context.Context) error {
		return s.repo.Incr(ctx, repositories.CounterEmergencyLookups)
	})
}

// TrackFacilityView counts one facility detail view
func (s *AnalyticsService) TrackFacilityView(facilityID string) {
	s.async("facility_view", func(ctx context.Context) error {
		return s.repo.IncrGroup(ctx, repositories.GroupFacilityViewed, facilityID)
	})
}

// Stats returns the current counters
func (s *AnalyticsService) Stats(ctx context.Context) (*entities.AnalyticsStats, error) {
	return s.repo.Snapshot(ctx)
}

func (s *AnalyticsService) async(kind string, fn func(ctx context.Context) error) {
	run := func() {
		// The request context may already be cancelled
		ctx, cancel := context.WithTimeout(context.Background(), analyticsWriteTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			log.Warn().Err(err).Str("kind", kind).Msg("failed to record analytics")
		}
	}
	if s.wait {
		run()
		return
	}
	go run()
}
