package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/zatekoja/careroute/backend/internal/application/services"
	"github.com/zatekoja/careroute/backend/internal/infrastructure/observability"
)

const emergencyFallbackMessage = "No emergency hospitals found nearby. Please call 108 (India) or your local emergency number for immediate assistance."

// emergencyNumbers is returned with every non-empty emergency lookup
var emergencyNumbers = map[string]string{
	"india":     "108",
	"ambulance": "102",
	"police":    "100",
}

// FacilityHandler handles facility-related HTTP requests
type FacilityHandler struct {
	ranking    *services.FacilityRankingService
	facilities *services.FacilityService
	analytics  *services.AnalyticsService
	metrics    *observability.Metrics
}

// NewFacilityHandler creates a new facility handler. analytics may be nil.
func NewFacilityHandler(
	ranking *services.FacilityRankingService,
	facilities *services.FacilityService,
	analytics *services.AnalyticsService,
	metrics *observability.Metrics,
) *FacilityHandler {
	return &FacilityHandler{
		ranking:    ranking,
		facilities: facilities,
		analytics:  analytics,
		metrics:    metrics,
	}
}

// SearchHospitals handles POST /api/hospitals/search
func (h *FacilityHandler) SearchHospitals(w http.ResponseWriter, r *http.Request) {
	var body hospitalSearchRequest
	if err := decodeJSON(r, &body); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	req, err := body.searchRequest()
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	hospitals := h.ranking.Rank(r.Context(), req)
	if h.analytics != nil {
		h.analytics.TrackFacilitySearch()
	}
	observability.RecordFacilityResults(r.Context(), h.metrics, "ranked", len(hospitals))

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"urgency":       req.Urgency,
		"total_results": len(hospitals),
		"hospitals":     hospitals,
	})
}

// NearestEmergency handles POST /api/hospitals/emergency
func (h *FacilityHandler) NearestEmergency(w http.ResponseWriter, r *http.Request) {
	var body emergencyRequest
	if err := decodeJSON(r, &body); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	location, maxResults, err := body.validate()
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	hospitals := h.ranking.NearestEmergency(r.Context(), location, maxResults)
	if h.analytics != nil {
		h.analytics.TrackEmergencyLookup()
	}
	observability.RecordFacilityResults(r.Context(), h.metrics, "emergency", len(hospitals))

	if len(hospitals) == 0 {
		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"success":       true,
			"total_results": 0,
			"hospitals":     hospitals,
			"message":       emergencyFallbackMessage,
		})
		return
	}

	plural := "s"
	if len(hospitals) == 1 {
		plural = ""
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":           true,
		"total_results":     len(hospitals),
		"message":           fmt.Sprintf("Found %d emergency hospital%s nearby", len(hospitals), plural),
		"hospitals":         hospitals,
		"emergency_numbers": emergencyNumbers,
	})
}

// GetHospital handles GET /api/hospitals/{id}
func (h *FacilityHandler) GetHospital(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	facility, ok := h.facilities.GetByID(id)
	if !ok {
		respondWithError(w, http.StatusNotFound, fmt.Sprintf("no hospital found with ID: %s", id))
		return
	}
	if h.analytics != nil {
		h.analytics.TrackFacilityView(facility.ID)
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"hospital": facility,
	})
}

// BySpecialty handles GET /api/hospitals/specialty/{specialty}
func (h *FacilityHandler) BySpecialty(w http.ResponseWriter, r *http.Request) {
	specialty := strings.TrimSpace(r.PathValue("specialty"))
	hospitals := h.facilities.BySpecialty(specialty)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"specialty":     specialty,
		"total_results": len(hospitals),
		"hospitals":     hospitals,
	})
}

// Statistics handles GET /api/hospitals/stats
func (h *FacilityHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"statistics": h.facilities.Statistics(),
	})
}

// Suggest handles GET /api/hospitals/suggest?q=&limit=
func (h *FacilityHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	suggestions := h.facilities.Suggest(r.Context(), query, limit)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
		"count":       len(suggestions),
	})
}
