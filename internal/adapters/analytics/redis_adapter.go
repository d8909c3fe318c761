package analytics

import (
	"context"
	"fmt"
	"strconv"

	"github.com/zatekoja/careroute/backend/internal/domain/entities"
	"github.com/zatekoja/careroute/backend/internal/domain/repositories"
	redisclient "github.com/zatekoja/careroute/backend/internal/infrastructure/clients/redis"
	apperrors "github.com/zatekoja/careroute/backend/pkg/errors"
)

const (
	countersKey    = "analytics:counters"
	groupKeyPrefix = "analytics:group:"
)

// RedisAdapter keeps counters in Redis hashes so every API replica shares
// them. Plain counters live in one hash, each group in its own.
type RedisAdapter struct {
	client *redisclient.Client
}

// NewRedisAdapter creates a Redis-backed analytics repository
func NewRedisAdapter(client *redisclient.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (a *RedisAdapter) Incr(ctx context.Context, counter string) error {
	if err := a.client.Client().HIncrBy(ctx, countersKey, counter, 1).Err(); err != nil {
		return apperrors.NewInternalError("failed to increment counter", err)
	}
	return nil
}

func (a *RedisAdapter) IncrGroup(ctx context.Context, group, member string) error {
	if err := a.client.Client().HIncrBy(ctx, groupKeyPrefix+group, member, 1).Err(); err != nil {
		return apperrors.NewInternalError("failed to increment group counter", err)
	}
	return nil
}

func (a *RedisAdapter) Snapshot(ctx context.Context) (*entities.AnalyticsStats, error) {
	pipe := a.client.Client().Pipeline()
	counters := pipe.HGetAll(ctx, countersKey)
	urgency := pipe.HGetAll(ctx, groupKeyPrefix+repositories.GroupUrgency)
	language := pipe.HGetAll(ctx, groupKeyPrefix+repositories.GroupLanguage)
	viewed := pipe.HGetAll(ctx, groupKeyPrefix+repositories.GroupFacilityViewed)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, apperrors.NewInternalError("failed to read analytics counters", err)
	}

	plain, err := parseCounts(counters.Val())
	if err != nil {
		return nil, apperrors.NewInternalError("corrupt analytics counter", err)
	}
	byUrgency, err := parseCounts(urgency.Val())
	if err != nil {
		return nil, apperrors.NewInternalError("corrupt urgency counter", err)
	}
	byLanguage, err := parseCounts(language.Val())
	if err != nil {
		return nil, apperrors.NewInternalError("corrupt language counter", err)
	}
	byFacility, err := parseCounts(viewed.Val())
	if err != nil {
		return nil, apperrors.NewInternalError("corrupt facility view counter", err)
	}

	return buildStats(plain, byUrgency, byLanguage, byFacility), nil
}

func parseCounts(raw map[string]string) (map[string]int64, error) {
	out := make(map[string]int64, len(raw))
	for k, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s=%q: %w", k, v, err)
		}
		out[k] = n
	}
	return out, nil
}

func buildStats(plain, byUrgency, byLanguage, byFacility map[string]int64) *entities.AnalyticsStats {
	return &entities.AnalyticsStats{
		TotalAnalyses:       plain[repositories.CounterTotalAnalyses],
		AIPoweredAnalyses:   plain[repositories.CounterAIPowered],
		FacilitySearches:    plain[repositories.CounterFacilitySearches],
		EmergencyLookups:    plain[repositories.CounterEmergencyLookups],
		ByUrgency:           byUrgency,
		ByLanguage:          byLanguage,
		TopFacilitiesViewed: topN(byFacility, maxTopFacilities),
	}
}

var _ repositories.AnalyticsRepository = (*RedisAdapter)(nil)
