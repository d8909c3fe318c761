package entities

import "time"

// TriageEvent is published after each completed analysis.
type TriageEvent struct {
	ID           string       `json:"id"`
	Urgency      UrgencyLevel `json:"urgency_level"`
	UrgencyScore int          `json:"urgency_score"`
	Specialties  []string     `json:"specialties"`
	Language     Language     `json:"language"`
	AIPowered    bool         `json:"ai_powered"`
	MatchedCount int          `json:"matched_count"`
	LatencyMs    int64        `json:"latency_ms"`
	Timestamp    time.Time    `json:"timestamp"`
}

// NewTriageEvent builds an event from a finished analysis
func NewTriageEvent(id string, result *AnalysisResult, latency time.Duration) *TriageEvent {
	return &TriageEvent{
		ID:           id,
		Urgency:      result.Urgency,
		UrgencyScore: result.UrgencyScore,
		Specialties:  result.Specialties,
		Language:     result.Language,
		AIPowered:    result.AIPowered,
		MatchedCount: len(result.MatchedSymptoms),
		LatencyMs:    latency.Milliseconds(),
		Timestamp:    time.Now().UTC(),
	}
}

// TriageHistoryEntry is one stored analysis for a session
type TriageHistoryEntry struct {
	ID              string       `json:"id" db:"id"`
	SessionID       string       `json:"session_id" db:"session_id"`
	SymptomText     string       `json:"symptom_text" db:"symptom_text"`
	Language        Language     `json:"language" db:"language"`
	Urgency         UrgencyLevel `json:"urgency_level" db:"urgency_level"`
	UrgencyScore    int          `json:"urgency_score" db:"urgency_score"`
	Specialties     []string     `json:"specialties" db:"-"`
	MatchedSymptoms []string     `json:"matched_symptoms" db:"-"`
	AIPowered       bool         `json:"ai_powered" db:"ai_powered"`
	CreatedAt       time.Time    `json:"created_at" db:"created_at"`
}

// AnalyticsStats is a snapshot of usage counters
type AnalyticsStats struct {
	TotalAnalyses       int64            `json:"total_analyses"`
	ByUrgency           map[string]int64 `json:"searches_by_urgency"`
	ByLanguage          map[string]int64 `json:"languages_used"`
	AIPoweredAnalyses   int64            `json:"ai_powered_analyses"`
	FacilitySearches    int64            `json:"facility_searches"`
	EmergencyLookups    int64            `json:"emergency_mode_uses"`
	TopFacilitiesViewed map[string]int64 `json:"top_hospitals_viewed"`
}
