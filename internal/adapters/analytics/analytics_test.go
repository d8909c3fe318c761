package analytics

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/careroute/backend/internal/domain/repositories"
)

func TestMemoryAdapter_Snapshot(t *testing.T) {
	ctx := context.Background()
	a := NewMemoryAdapter()

	for range 3 {
		require.NoError(t, a.Incr(ctx, repositories.CounterTotalAnalyses))
	}
	require.NoError(t, a.Incr(ctx, repositories.CounterAIPowered))
	require.NoError(t, a.Incr(ctx, repositories.CounterEmergencyLookups))
	require.NoError(t, a.IncrGroup(ctx, repositories.GroupUrgency, "HIGH"))
	require.NoError(t, a.IncrGroup(ctx, repositories.GroupUrgency, "HIGH"))
	require.NoError(t, a.IncrGroup(ctx, repositories.GroupLanguage, "kn"))

	stats, err := a.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalAnalyses)
	assert.Equal(t, int64(1), stats.AIPoweredAnalyses)
	assert.Equal(t, int64(1), stats.EmergencyLookups)
	assert.Zero(t, stats.FacilitySearches)
	assert.Equal(t, map[string]int64{"HIGH": 2}, stats.ByUrgency)
	assert.Equal(t, map[string]int64{"kn": 1}, stats.ByLanguage)
	assert.Empty(t, stats.TopFacilitiesViewed)

	// snapshots are copies
	stats.ByUrgency["HIGH"] = 99
	again, _ := a.Snapshot(ctx)
	assert.Equal(t, int64(2), again.ByUrgency["HIGH"])
}

func TestTopN(t *testing.T) {
	counts := map[string]int64{}
	for i := range 15 {
		counts[fmt.Sprintf("h%02d", i)] = int64(i % 5)
	}

	top := topN(counts, maxTopFacilities)
	assert.Len(t, top, maxTopFacilities)
	for _, id := range []string{"h04", "h09", "h14", "h03", "h08", "h13"} {
		assert.Contains(t, top, id)
	}
	assert.NotContains(t, top, "h00")
}

func TestParseCounts(t *testing.T) {
	got, err := parseCounts(map[string]string{"a": "3", "b": "0"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"a": 3, "b": 0}, got)

	_, err = parseCounts(map[string]string{"a": "x"})
	assert.Error(t, err)
}
