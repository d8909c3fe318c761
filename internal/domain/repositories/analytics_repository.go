package repositories

import (
	"context"

	"github.com/zatekoja/careroute/backend/internal/domain/entities"
)

// Analytics counter names
const (
	CounterTotalAnalyses    = "total_analyses"
	CounterAIPowered        = "ai_powered_analyses"
	CounterFacilitySearches = "facility_searches"
	CounterEmergencyLookups = "emergency_lookups"
)

// Analytics counter groups keyed by a dimension value
const (
	GroupUrgency        = "urgency"
	GroupLanguage       = "language"
	GroupFacilityViewed = "facility_viewed"
)

// AnalyticsRepository keeps usage counters
type AnalyticsRepository interface {
	// Incr bumps a plain counter
	Incr(ctx context.Context, counter string) error

	// IncrGroup bumps the member counter inside a group
	IncrGroup(ctx context.Context, group, member string) error

	// Snapshot reads every counter
	Snapshot(ctx context.Context) (*entities.AnalyticsStats, error)
}
