package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/careroute/backend/internal/adapters/analytics"
	"github.com/zatekoja/careroute/backend/internal/adapters/cache"
	"github.com/zatekoja/careroute/backend/internal/api/handlers"
	"github.com/zatekoja/careroute/backend/internal/api/middleware"
	"github.com/zatekoja/careroute/backend/internal/application/services"
	"github.com/zatekoja/careroute/backend/internal/catalog"
	"github.com/zatekoja/careroute/backend/internal/domain/entities"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	symptoms := catalog.NewSymptomCatalog([]entities.Symptom{{
		ID:           "fever",
		Name:         "Fever",
		Keywords:     []string{"fever"},
		Urgency:      entities.UrgencyMedium,
		UrgencyScore: 5,
		Specialties:  []string{"General Medicine"},
	}})
	facilities := catalog.NewFacilityCatalog([]entities.Facility{{
		ID:          "h1",
		Name:        "City Hospital",
		Location:    services.DefaultLocation,
		Type:        entities.FacilityTypeGovernment,
		Specialties: []string{"General Medicine"},
		Rating:      4,
	}})

	analyticsSvc := services.NewAnalyticsService(analytics.NewMemoryAdapter())
	ranking := services.NewFacilityRankingService(facilities, services.DefaultLocation, services.DefaultMaxDistanceKm)
	analysis := services.NewSymptomAnalysisService(symptoms)
	triage := services.NewTriageService(analysis, ranking, services.WithAnalytics(analyticsSvc))
	facilitySvc := services.NewFacilityService(facilities, nil)

	router := NewRouter(
		handlers.NewTriageHandler(triage, nil, nil),
		handlers.NewFacilityHandler(ranking, facilitySvc, analyticsSvc, nil),
		handlers.NewAnalyticsHandler(analyticsSvc),
		handlers.NewHealthHandler(analysis.CatalogStatus, facilitySvc.CatalogStatus, false, nil),
		nil,
		middleware.NewCacheMiddleware(cache.NewMemoryAdapter(100), time.Minute, nil),
		[]string{"*"},
		nil,
	)
	return router.SetupRoutes()
}

func TestRouter_Health(t *testing.T) {
	h := newTestRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}

func TestRouter_CachedCatalogReadKeepsCORS(t *testing.T) {
	h := newTestRouter(t)

	var last *httptest.ResponseRecorder
	for range 2 {
		req := httptest.NewRequest(http.MethodGet, "/api/symptoms", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		last = httptest.NewRecorder()
		h.ServeHTTP(last, req)
		require.Equal(t, http.StatusOK, last.Code)
	}

	assert.Equal(t, "HIT", last.Header().Get("X-Cache"))
	assert.Equal(t, "*", last.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, last.Body.String(), `"fever"`)
}

func TestRouter_AnalyzeAndSearch(t *testing.T) {
	h := newTestRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/analyze-symptoms",
		strings.NewReader(`{"symptoms":"high fever","language":"en"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"urgency_level":"MEDIUM"`)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/hospitals/search",
		strings.NewReader(`{"specialties":["General Medicine"]}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_results":1`)
}

func TestRouter_EventStreamDisabled(t *testing.T) {
	h := newTestRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events/stream", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_UnknownRoute(t *testing.T) {
	h := newTestRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/procedures", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
