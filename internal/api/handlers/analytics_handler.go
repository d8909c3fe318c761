package handlers

import (
	"net/http"

	"github.com/zatekoja/careroute/backend/internal/application/services"
)

// AnalyticsHandler exposes usage counters
type AnalyticsHandler struct {
	analytics *services.AnalyticsService
}

func NewAnalyticsHandler(analytics *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Stats handles GET /api/analytics/stats
func (h *AnalyticsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analytics.Stats(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"analytics": stats,
	})
}
