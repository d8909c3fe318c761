package entities

import "time"

// DefaultSpecialty is recommended when nothing more specific applies
const DefaultSpecialty = "General Medicine"

// Analysis result caps
const (
	MaxSpecialties = 3
	MaxFirstAid    = 5
	MaxRedFlags    = 5
)

// AnalysisResult is the outcome of triaging one symptom description
type AnalysisResult struct {
	Urgency         UrgencyLevel     `json:"urgency_level"`
	UrgencyScore    int              `json:"urgency_score"`
	MatchedSymptoms []MatchedSymptom `json:"matched_symptoms"`
	Specialties     []string         `json:"recommended_specialties"`
	Description     string           `json:"recommendation"`
	FirstAid        []string         `json:"first_aid_tips"`
	RedFlags        []string         `json:"red_flags"`
	AIPowered       bool             `json:"ai_powered"`
	Language        Language         `json:"language"`
	Timestamp       time.Time        `json:"timestamp"`
}

// ClassifierResult is what an external classifier returns when it is
// confident enough to be used.
type ClassifierResult struct {
	Urgency     UrgencyLevel `json:"urgency"`
	Specialties []string     `json:"specialties"`
	Explanation string       `json:"explanation"`
	Confidence  *float64     `json:"confidence,omitempty"`
}

// EmergencyCheckResult answers "is this an emergency" for a description
type EmergencyCheckResult struct {
	IsEmergency  bool         `json:"is_emergency"`
	Urgency      UrgencyLevel `json:"urgency_level"`
	UrgencyScore int          `json:"urgency_score"`
	Message      string       `json:"message"`
	FirstAid     []string     `json:"first_aid_tips"`
	RedFlags     []string     `json:"red_flags"`
}

// CombinedSearchResult is an analysis followed by a facility search
type CombinedSearchResult struct {
	Analysis   *AnalysisResult  `json:"analysis"`
	Facilities []RankedFacility `json:"hospitals"`
	Count      int              `json:"count"`
}
