package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/careroute/backend/internal/catalog"
	"github.com/zatekoja/careroute/backend/internal/domain/entities"
	"github.com/zatekoja/careroute/backend/internal/domain/providers"
)

func newAnalysisService(opts ...AnalysisOption) *SymptomAnalysisService {
	return NewSymptomAnalysisService(testSymptomCatalog(), append([]AnalysisOption{WithClock(fixedClock)}, opts...)...)
}

func confidence(v float64) *float64 { return &v }

func TestAnalyze_ChestPainExample(t *testing.T) {
	svc := newAnalysisService()

	result := svc.Analyze(context.Background(), "I have severe chest pain", entities.LanguageEnglish)

	require.Len(t, result.MatchedSymptoms, 1)
	assert.Equal(t, "chest_pain", result.MatchedSymptoms[0].ID)
	assert.Equal(t, entities.UrgencyHigh, result.Urgency)
	assert.Equal(t, 9, result.UrgencyScore)
	require.NotEmpty(t, result.Specialties)
	assert.Contains(t, []string{"Cardiology", "Emergency Medicine"}, result.Specialties[0])
	assert.Equal(t, []string{"Pain spreading to arm or jaw", "Shortness of breath"}, result.RedFlags)
	assert.Contains(t, result.Description, "⚠️ URGENT:")
	assert.False(t, result.AIPowered)
	assert.Equal(t, fixedClock(), result.Timestamp)
}

func TestAnalyze_NoOverlapIsGenericLow(t *testing.T) {
	svc := newAnalysisService()

	for _, text := range []string{"my elbow itches slightly", "", "ab", "!!! ??? ..."} {
		t.Run(fmt.Sprintf("%q", text), func(t *testing.T) {
			result := svc.Analyze(context.Background(), text, entities.LanguageEnglish)
			assert.Equal(t, entities.UrgencyLow, result.Urgency)
			assert.Equal(t, 1, result.UrgencyScore)
			assert.Equal(t, []string{entities.DefaultSpecialty}, result.Specialties)
			assert.NotEmpty(t, result.FirstAid)
			assert.Empty(t, result.MatchedSymptoms)
			assert.Empty(t, result.RedFlags)
			assert.Equal(t, emptyAnalysisRecommendation, result.Description)
		})
	}
}

func TestAnalyze_DefaultsLanguage(t *testing.T) {
	svc := newAnalysisService()
	result := svc.Analyze(context.Background(), "headache since morning", "")
	assert.Equal(t, entities.LanguageEnglish, result.Language)
	assert.Equal(t, entities.UrgencyLow, result.Urgency)
	assert.Equal(t, 3, result.UrgencyScore)
}

func TestAnalyze_MultipleSevereSymptomsEscalate(t *testing.T) {
	svc := newAnalysisService()
	result := svc.Analyze(context.Background(), "chest pain and breathless", entities.LanguageEnglish)
	assert.Equal(t, entities.UrgencyHigh, result.Urgency)
	assert.Equal(t, 10, result.UrgencyScore)
	assert.Equal(t, "Emergency Medicine", result.Specialties[0])
	assert.Equal(t, []string{"Pain spreading to arm or jaw", "Shortness of breath", "Blue lips"}, result.RedFlags)
}

func TestAnalyze_ClassifierSupersedesRules(t *testing.T) {
	classifier := new(mockClassifier)
	classifier.On("Classify", mock.Anything, "severe headache and fever").Return(&entities.ClassifierResult{
		Urgency:     "high",
		Specialties: []string{"Neurology", "neurology", "", "Emergency Medicine", "Internal Medicine", "Extra"},
		Explanation: "Possible meningitis.",
		Confidence:  confidence(0.9),
	}, nil).Once()

	svc := newAnalysisService(WithClassifier(classifier, time.Second, 0.5))
	result := svc.Analyze(context.Background(), "Severe headache and fever!", entities.LanguageEnglish)

	assert.True(t, result.AIPowered)
	assert.Equal(t, entities.UrgencyHigh, result.Urgency)
	assert.Equal(t, 9, result.UrgencyScore)
	assert.Equal(t, []string{"Neurology", "Emergency Medicine", "Internal Medicine"}, result.Specialties)
	assert.Equal(t, "Possible meningitis.", result.Description)
	// First aid still comes from the rule matches
	assert.Len(t, result.MatchedSymptoms, 2)
	assert.Equal(t, []string{"Drink plenty of fluids", "Sit down and rest", "Rest in a dark room"}, result.FirstAid)
	classifier.AssertExpectations(t)
}

func TestAnalyze_ClassifierWithoutMatchesUsesGenericTips(t *testing.T) {
	classifier := new(mockClassifier)
	classifier.On("Classify", mock.Anything, mock.Anything).Return(&entities.ClassifierResult{
		Urgency: entities.UrgencyLow,
	}, nil)

	svc := newAnalysisService(WithClassifier(classifier, time.Second, 0.5))
	result := svc.Analyze(context.Background(), "my elbow itches", entities.LanguageEnglish)

	assert.True(t, result.AIPowered)
	assert.Equal(t, 2, result.UrgencyScore)
	assert.Equal(t, []string{entities.DefaultSpecialty}, result.Specialties)
	assert.Equal(t, classifierExplanation, result.Description)
	assert.Equal(t, GenericFirstAid, result.FirstAid)
}

func TestAnalyze_ClassifierFailuresFallBack(t *testing.T) {
	tests := []struct {
		name   string
		result *entities.ClassifierResult
		err    error
	}{
		{"error", nil, fmt.Errorf("%w: boom", providers.ErrClassifierUnavailable)},
		{"nil result", nil, nil},
		{"invalid label", &entities.ClassifierResult{Urgency: "CRITICAL"}, nil},
		{"low confidence", &entities.ClassifierResult{Urgency: entities.UrgencyLow, Confidence: confidence(0.2)}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classifier := new(mockClassifier)
			classifier.On("Classify", mock.Anything, mock.Anything).Return(tt.result, tt.err)

			svc := newAnalysisService(WithClassifier(classifier, time.Second, 0.5))
			result := svc.Analyze(context.Background(), "I have severe chest pain", entities.LanguageEnglish)

			assert.False(t, result.AIPowered)
			assert.Equal(t, entities.UrgencyHigh, result.Urgency)
			assert.Equal(t, 9, result.UrgencyScore)
		})
	}
}

func TestAnalyze_ClassifierTimeoutFallsBack(t *testing.T) {
	svc := newAnalysisService(WithClassifier(blockingClassifier{}, 20*time.Millisecond, 0))

	start := time.Now()
	result := svc.Analyze(context.Background(), "I have severe chest pain", entities.LanguageEnglish)

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.False(t, result.AIPowered)
	assert.Equal(t, entities.UrgencyHigh, result.Urgency)
}

func TestAnalyze_EmptyTextSkipsClassifier(t *testing.T) {
	classifier := new(mockClassifier)
	svc := newAnalysisService(WithClassifier(classifier, time.Second, 0))

	result := svc.Analyze(context.Background(), "  ", entities.LanguageEnglish)
	assert.Equal(t, entities.UrgencyLow, result.Urgency)
	classifier.AssertNotCalled(t, "Classify", mock.Anything, mock.Anything)
}

func TestEmergencyCheck(t *testing.T) {
	svc := newAnalysisService()

	high := svc.EmergencyCheck(context.Background(), "sudden chest pain", entities.LanguageEnglish)
	assert.True(t, high.IsEmergency)
	assert.Equal(t, entities.UrgencyHigh, high.Urgency)
	assert.Contains(t, high.Message, "108")
	assert.NotEmpty(t, high.RedFlags)

	low := svc.EmergencyCheck(context.Background(), "mild headache", entities.LanguageEnglish)
	assert.False(t, low.IsEmergency)
	assert.Empty(t, low.RedFlags)
}

func TestSymptomQueries(t *testing.T) {
	svc := newAnalysisService()

	assert.Len(t, svc.ListSymptoms(), len(testSymptoms()))

	s, ok := svc.GetSymptom("fever")
	require.True(t, ok)
	assert.Equal(t, "Fever", s.Name)

	_, ok = svc.GetSymptom("unknown")
	assert.False(t, ok)

	found := svc.SearchSymptoms("pain", 0)
	require.Len(t, found, 2)
	assert.Equal(t, "chest_pain", found[0].ID)
	assert.Equal(t, "headache", found[1].ID)

	assert.Len(t, svc.SearchSymptoms("pain", 1), 1)
	assert.Empty(t, svc.SearchSymptoms("  ", 10))
}

func TestSearchSymptoms_LimitCapped(t *testing.T) {
	records := make([]entities.Symptom, 0, 60)
	for i := range 60 {
		records = append(records, entities.Symptom{
			ID:           fmt.Sprintf("s%02d", i),
			Name:         fmt.Sprintf("Rash %d", i),
			Keywords:     []string{"rash"},
			Urgency:      entities.UrgencyLow,
			UrgencyScore: 2,
		})
	}
	svc := NewSymptomAnalysisService(catalog.NewSymptomCatalog(records))

	assert.Len(t, svc.SearchSymptoms("rash", 0), DefaultSymptomSearchLimit)
	assert.Len(t, svc.SearchSymptoms("rash", 500), MaxSymptomSearchLimit)
}

func TestAnalyze_EmptyCatalogStillAnswers(t *testing.T) {
	svc := NewSymptomAnalysisService(catalog.LoadSymptoms("/does/not/exist.json"))

	result := svc.Analyze(context.Background(), "I have severe chest pain", entities.LanguageEnglish)
	assert.Equal(t, entities.UrgencyLow, result.Urgency)
	assert.Equal(t, catalog.StateNoData, svc.CatalogStatus().State)
}
