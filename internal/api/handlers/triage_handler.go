package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/zatekoja/careroute/backend/internal/application/services"
	"github.com/zatekoja/careroute/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/careroute/backend/pkg/errors"
)

// TriageHandler serves symptom analysis, symptom catalog lookups, the
// combined search and session history.
type TriageHandler struct {
	triage  *services.TriageService
	history *services.TriageHistoryService
	metrics *observability.Metrics
}

// NewTriageHandler creates a triage handler. history may be nil when no
// database is configured.
func NewTriageHandler(triage *services.TriageService, history *services.TriageHistoryService, metrics *observability.Metrics) *TriageHandler {
	return &TriageHandler{triage: triage, history: history, metrics: metrics}
}

// AnalyzeSymptoms handles POST /api/analyze-symptoms
func (h *TriageHandler) AnalyzeSymptoms(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	text, lang, err := req.validate()
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	start := time.Now()
	result := h.triage.Analysis().Analyze(r.Context(), text, lang)
	h.triage.AfterAnalysis(r.Context(), sessionID(r), text, result, time.Since(start))

	respondWithJSON(w, http.StatusOK, result)
}

// EmergencyCheck handles POST /api/emergency-check
func (h *TriageHandler) EmergencyCheck(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	text, lang, err := req.validate()
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, h.triage.Analysis().EmergencyCheck(r.Context(), text, lang))
}

// ListSymptoms handles GET /api/symptoms
func (h *TriageHandler) ListSymptoms(w http.ResponseWriter, r *http.Request) {
	symptoms := h.triage.Analysis().ListSymptoms()
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"symptoms": symptoms,
		"count":    len(symptoms),
	})
}

// SearchSymptoms handles GET /api/symptoms/search?q=&limit=
func (h *TriageHandler) SearchSymptoms(w http.ResponseWriter, r *http.Request) {
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

	symptoms := h.triage.Analysis().SearchSymptoms(query, limit)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"query":    query,
		"symptoms": symptoms,
		"count":    len(symptoms),
	})
}

// GetSymptom handles GET /api/symptoms/{id}
func (h *TriageHandler) GetSymptom(w http.ResponseWriter, r *http.Request) {
	symptom, ok := h.triage.Analysis().GetSymptom(r.PathValue("id"))
	if !ok {
		respondWithError(w, http.StatusNotFound, "symptom not found")
		return
	}
	respondWithJSON(w, http.StatusOK, symptom)
}

// CombinedSearch handles POST /api/search
func (h *TriageHandler) CombinedSearch(w http.ResponseWriter, r *http.Request) {
	var req combinedSearchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	text, lang, err := req.validate()
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	location, err := req.Location.point()
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	filters, err := req.Filters.filters()
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	start := time.Now()
	result := h.triage.Search(r.Context(), text, lang, location, filters)
	h.triage.AfterAnalysis(r.Context(), sessionID(r), text, result.Analysis, time.Since(start))
	observability.RecordFacilityResults(r.Context(), h.metrics, "combined", result.Count)

	respondWithJSON(w, http.StatusOK, result)
}

// History handles GET /api/history?session_id=. The X-Session-ID header is
// accepted in place of the query parameter.
func (h *TriageHandler) History(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		respondWithAppError(w, r, apperrors.NewUnavailableError("triage history is not enabled", nil))
		return
	}

	session := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if session == "" {
		session = sessionID(r)
	}
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	entries, err := h.history.List(r.Context(), session, limit)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": session,
		"history":    entries,
		"count":      len(entries),
	})
}

// parseLimit parses an optional positive limit; zero means the default
func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, apperrors.NewValidationError("limit must be a positive integer")
	}
	return n, nil
}
