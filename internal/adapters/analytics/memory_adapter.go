package analytics

import (
	"context"
	"sort"
	"sync"

	"github.com/zatekoja/careroute/backend/internal/domain/entities"
	"github.com/zatekoja/careroute/backend/internal/domain/repositories"
)

// maxTopFacilities bounds the facility view table in a snapshot
const maxTopFacilities = 10

// MemoryAdapter is the process-local fallback when Redis is not configured
type MemoryAdapter struct {
	mu       sync.Mutex
	counters map[string]int64
	groups   map[string]map[string]int64
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		counters: make(map[string]int64),
		groups:   make(map[string]map[string]int64),
	}
}

func (a *MemoryAdapter) Incr(_ context.Context, counter string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.counters[counter]++
	return nil
}

func (a *MemoryAdapter) IncrGroup(_ context.Context, group, member string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.groups[group] == nil {
		a.groups[group] = make(map[string]int64)
	}
	a.groups[group][member]++
	return nil
}

func (a *MemoryAdapter) Snapshot(context.Context) (*entities.AnalyticsStats, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return buildStats(
		a.counters,
		copyCounts(a.groups[repositories.GroupUrgency]),
		copyCounts(a.groups[repositories.GroupLanguage]),
		a.groups[repositories.GroupFacilityViewed],
	), nil
}

func copyCounts(in map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// topN keeps the n members with the highest counts, ties broken by name
func topN(counts map[string]int64, n int) map[string]int64 {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	out := make(map[string]int64, len(keys))
	for _, k := range keys {
		out[k] = counts[k]
	}
	return out
}

var _ repositories.AnalyticsRepository = (*MemoryAdapter)(nil)
