package routes

import (
	"net/http"

	"github.com/zatekoja/careroute/backend/internal/api/handlers"
	"github.com/zatekoja/careroute/backend/internal/api/middleware"
	"github.com/zatekoja/careroute/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	triageHandler    *handlers.TriageHandler
	facilityHandler  *handlers.FacilityHandler
	analyticsHandler *handlers.AnalyticsHandler
	healthHandler    *handlers.HealthHandler
	eventStream      *handlers.EventStreamHandler

	cacheMiddleware *middleware.CacheMiddleware
	allowedOrigins  []string
	metrics         *observability.Metrics
}

// NewRouter creates a new router. eventStream and cacheMiddleware may be nil.
func NewRouter(
	triageHandler *handlers.TriageHandler,
	facilityHandler *handlers.FacilityHandler,
	analyticsHandler *handlers.AnalyticsHandler,
	healthHandler *handlers.HealthHandler,
	eventStream *handlers.EventStreamHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:              http.NewServeMux(),
		triageHandler:    triageHandler,
		facilityHandler:  facilityHandler,
		analyticsHandler: analyticsHandler,
		healthHandler:    healthHandler,
		eventStream:      eventStream,
		cacheMiddleware:  cacheMiddleware,
		allowedOrigins:   allowedOrigins,
		metrics:          metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", r.healthHandler.Health)

	// Triage
	r.mux.HandleFunc("POST /api/analyze-symptoms", r.triageHandler.AnalyzeSymptoms)
	r.mux.HandleFunc("POST /api/emergency-check", r.triageHandler.EmergencyCheck)
	r.mux.HandleFunc("POST /api/search", r.triageHandler.CombinedSearch)
	r.mux.HandleFunc("GET /api/history", r.triageHandler.History)

	// Symptom catalog
	r.mux.HandleFunc("GET /api/symptoms", r.triageHandler.ListSymptoms)
	r.mux.HandleFunc("GET /api/symptoms/search", r.triageHandler.SearchSymptoms)
	r.mux.HandleFunc("GET /api/symptoms/{id}", r.triageHandler.GetSymptom)

	// Hospitals
	r.mux.HandleFunc("POST /api/hospitals/search", r.facilityHandler.SearchHospitals)
	r.mux.HandleFunc("POST /api/hospitals/emergency", r.facilityHandler.NearestEmergency)
	r.mux.HandleFunc("GET /api/hospitals/stats", r.facilityHandler.Statistics)
	r.mux.HandleFunc("GET /api/hospitals/suggest", r.facilityHandler.Suggest)
	r.mux.HandleFunc("GET /api/hospitals/specialty/{specialty}", r.facilityHandler.BySpecialty)
	r.mux.HandleFunc("GET /api/hospitals/{id}", r.facilityHandler.GetHospital)

	// Analytics and live events
	r.mux.HandleFunc("GET /api/analytics/stats", r.analyticsHandler.Stats)
	r.mux.HandleFunc("GET /api/events/stream", r.eventStream.Stream)

	// Apply middleware in reverse order (last middleware wraps first).
	// Logging sits next to the mux so it sees the matched route pattern.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
