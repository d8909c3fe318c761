package evaluation

import (
	"time"

	"github.com/zatekoja/careroute/backend/internal/domain/entities"
)

// GoldenCase is a labeled symptom description with its expected triage.
type GoldenCase struct {
	ID                  string                `json:"id"`
	Text                string                `json:"text"`
	Language            entities.Language     `json:"language"`
	ExpectedUrgency     entities.UrgencyLevel `json:"expected_urgency"`
	ExpectedSpecialties []string              `json:"expected_specialties"`
	Difficulty          string                `json:"difficulty"` // easy, medium, hard
}

// CaseResult holds the evaluation outcome for a single case.
type CaseResult struct {
	CaseID               string                `json:"case_id"`
	ExpectedUrgency      entities.UrgencyLevel `json:"expected_urgency"`
	PredictedUrgency     entities.UrgencyLevel `json:"predicted_urgency"`
	UrgencyCorrect       bool                  `json:"urgency_correct"`
	UnderTriaged         bool                  `json:"under_triaged"`
	RecallAt3            float64               `json:"recall_at_3"`
	MRRAt3               float64               `json:"mrr_at_3"`
	PredictedSpecialties []string              `json:"predicted_specialties"`
	AIPowered            bool                  `json:"ai_powered"`
	Latency              time.Duration         `json:"latency"`
}

// Summary holds aggregate metrics across all golden cases.
type Summary struct {
	TotalCases      int                                       `json:"total_cases"`
	UrgencyAccuracy float64                                   `json:"urgency_accuracy"`
	UnderTriageRate float64                                   `json:"under_triage_rate"`
	AvgRecallAt3    float64                                   `json:"avg_recall_at_3"`
	AvgMRRAt3       float64                                   `json:"avg_mrr_at_3"`
	AvgLatency      time.Duration                             `json:"avg_latency"`
	ByUrgency       map[entities.UrgencyLevel]*UrgencySummary `json:"by_urgency"`
	Failures        []CaseResult                              `json:"failures,omitempty"`

	highCases int
}

// UrgencySummary holds metrics grouped by expected urgency.
type UrgencySummary struct {
	Count    int     `json:"count"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}
