package evaluation

import (
	"strings"

	"github.com/zatekoja/careroute/backend/internal/domain/entities"
)

// RecallAtK computes Recall@K: the fraction of relevant items found in the
// top-K retrieved results. Items compare case-insensitively. Returns 0 if
// relevant is empty.
func RecallAtK(relevant, retrieved []string, k int) float64 {
	if len(relevant) == 0 {
		return 0.0
	}

	relevantSet := foldSet(relevant)
	found := 0
	for _, r := range topK(retrieved, k) {
		if _, ok := relevantSet[strings.ToLower(r)]; ok {
			found++
		}
	}

	return float64(found) / float64(len(relevantSet))
}

// MRRAtK computes the reciprocal rank of the first relevant item in the
// top-K retrieved results, or 0 when none is found.
func MRRAtK(relevant, retrieved []string, k int) float64 {
	if len(relevant) == 0 || len(retrieved) == 0 {
		return 0.0
	}

	relevantSet := foldSet(relevant)
	for i, r := range topK(retrieved, k) {
		if _, ok := relevantSet[strings.ToLower(r)]; ok {
			return 1.0 / float64(i+1)
		}
	}

	return 0.0
}

// UnderTriaged reports a HIGH case that was predicted as anything lower.
func UnderTriaged(expected, predicted entities.UrgencyLevel) bool {
	return expected == entities.UrgencyHigh && predicted != entities.UrgencyHigh
}

func topK(items []string, k int) []string {
	if k < len(items) {
		return items[:k]
	}
	return items
}

func foldSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[strings.ToLower(strings.TrimSpace(item))] = struct{}{}
	}
	return set
}
