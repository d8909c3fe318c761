package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/zatekoja/careroute/backend/internal/domain/entities"
	"github.com/zatekoja/careroute/backend/internal/domain/providers"
	"github.com/zatekoja/careroute/backend/pkg/geo"
)

const eventPublishTimeout = 3 * time.Second

// TriageService joins symptom analysis with facility ranking and runs the
// optional post-analysis hooks. Hooks never change a returned result.
type TriageService struct {
	analysis  *SymptomAnalysisService
	ranking   *FacilityRankingService
	history   *TriageHistoryService
	analytics *AnalyticsService
	publisher providers.TriageEventPublisher
}

// TriageOption wires an optional hook
type TriageOption func(*TriageService)

func WithHistory(h *TriageHistoryService) TriageOption {
	return func(s *TriageService) { s.history = h }
}

func WithAnalytics(a *AnalyticsService) TriageOption {
	return func(s *TriageService) { s.analytics = a }
}

func WithEventPublisher(p providers.TriageEventPublisher) TriageOption {
	return func(s *TriageService) { s.publisher = p }
}

func NewTriageService(analysis *SymptomAnalysisService, ranking *FacilityRankingService, opts ...TriageOption) *TriageService {
	s := &TriageService{analysis: analysis, ranking: ranking}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search analyses text and ranks facilities for the resulting specialties
// and urgency.
func (s *TriageService) Search(ctx context.Context, text string, lang entities.Language, location *geo.Point, filters entities.FacilityFilters) *entities.CombinedSearchResult {
	ctx, span := tracer.Start(ctx, "TriageService.Search")
	defer span.End()

	analysis := s.analysis.Analyze(ctx, text, lang)
	facilities := s.ranking.Rank(ctx, entities.FacilitySearchRequest{
		Specialties: analysis.Specialties,
		Location:    location,
		Urgency:     analysis.Urgency,
		Filters:     filters,
	})

	return &entities.CombinedSearchResult{
		Analysis:   analysis,
		Facilities: facilities,
		Count:      len(facilities),
	}
}

// AfterAnalysis records history, analytics and the triage event for a
// finished analysis. It is best effort and returns immediately.
func (s *TriageService) AfterAnalysis(ctx context.Context, sessionID, text string, result *entities.AnalysisResult, latency time.Duration) {
	if result == nil {
		return
	}
	if s.history != nil {
		s.history.Record(sessionID, text, result)
	}
	if s.analytics != nil {
		s.analytics.TrackAnalysis(result)
	}
	if s.publisher != nil {
		event := entities.NewTriageEvent(uuid.NewString(), result, latency)
		go func() {
			pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventPublishTimeout)
			defer cancel()
			if err := s.publisher.Publish(pctx, event); err != nil {
				log.Warn().Err(err).Str("event_id", event.ID).Msg("failed to publish triage event")
			}
		}()
	}
}

func (s *TriageService) Analysis() *SymptomAnalysisService { return s.analysis }

func (s *TriageService) Ranking() *FacilityRankingService { return s.ranking }
