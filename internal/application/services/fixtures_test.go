package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/zatekoja/careroute/backend/internal/catalog"
	"github.com/zatekoja/careroute/backend/internal/domain/entities"
	"github.com/zatekoja/careroute/backend/pkg/geo"
)

// kmNorth is roughly one kilometre of latitude in degrees
const kmNorth = 1 / 111.19

var origin = geo.Point{Latitude: 12.9716, Longitude: 77.5946}

func north(km float64) geo.Point {
	return geo.Point{Latitude: origin.Latitude + km*kmNorth, Longitude: origin.Longitude}
}

func testSymptoms() []entities.Symptom {
	return []entities.Symptom{
		{
			ID:           "chest_pain",
			Name:         "Chest Pain",
			Keywords:     []string{"chest pain", "chest tightness"},
			Translations: map[entities.Language]string{entities.LanguageHindi: "सीने में दर्द"},
			Urgency:      entities.UrgencyHigh,
			UrgencyScore: 9,
			Specialties:  []string{"Cardiology", "Emergency Medicine"},
			FirstAid:     []string{"Sit down and rest", "Chew an aspirin if not allergic", "Loosen tight clothing"},
			RedFlags:     []string{"Pain spreading to arm or jaw", "Shortness of breath"},
			Description:  "Chest pain can indicate a heart problem.",
		},
		{
			ID:           "fever",
			Name:         "Fever",
			Keywords:     []string{"fever", "temperature"},
			Translations: map[entities.Language]string{entities.LanguageHindi: "बुखार"},
			Urgency:      entities.UrgencyMedium,
			UrgencyScore: 5,
			Specialties:  []string{"General Medicine", "Infectious Disease"},
			FirstAid:     []string{"Drink plenty of fluids", "Sit down and rest"},
			Description:  "Fever is usually a sign of infection.",
		},
		{
			ID:           "headache",
			Name:         "Headache",
			Keywords:     []string{"headache", "head pain"},
			Urgency:      entities.UrgencyLow,
			UrgencyScore: 3,
			Specialties:  []string{"Neurology", "General Medicine"},
			FirstAid:     []string{"Rest in a dark room"},
			Description:  "Headaches are commonly caused by tension.",
		},
		{
			ID:           "breathing",
			Name:         "Breathing Difficulty",
			Keywords:     []string{"breathing difficulty", "breathless"},
			Urgency:      entities.UrgencyHigh,
			UrgencyScore: 9,
			Specialties:  []string{"Pulmonology", "Emergency Medicine"},
			FirstAid:     []string{"Sit upright"},
			RedFlags:     []string{"Blue lips", "Shortness of breath"},
			Description:  "Difficulty breathing needs urgent evaluation.",
		},
		{
			ID:           "vomiting",
			Name:         "Vomiting",
			Keywords:     []string{"vomiting", "nausea"},
			Urgency:      entities.UrgencyMedium,
			UrgencyScore: 6,
			Specialties:  []string{"Gastroenterology"},
			FirstAid:     []string{"Sip oral rehydration solution"},
			RedFlags:     []string{"Blood in vomit"},
			Description:  "Vomiting may lead to dehydration.",
		},
	}
}

func testSymptomCatalog() *catalog.SymptomCatalog {
	return catalog.NewSymptomCatalog(testSymptoms())
}

func facilityAt(id string, p geo.Point, emergency, open bool, rating float64, specialties ...string) entities.Facility {
	return entities.Facility{
		ID:                 id,
		Name:               "Hospital " + id,
		Location:           p,
		Type:               entities.FacilityTypePrivate,
		Specialties:        specialties,
		EmergencyAvailable: emergency,
		Open24x7:           open,
		Rating:             rating,
	}
}

func fixedClock() time.Time {
	return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
}

type mockClassifier struct {
	mock.Mock
}

func (m *mockClassifier) Classify(ctx context.Context, text string) (*entities.ClassifierResult, error) {
	args := m.Called(ctx, text)
	res, _ := args.Get(0).(*entities.ClassifierResult)
	return res, args.Error(1)
}

func (m *mockClassifier) Name() string { return "mock" }

// blockingClassifier waits for the caller's deadline
type blockingClassifier struct{}

func (blockingClassifier) Classify(ctx context.Context, _ string) (*entities.ClassifierResult, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingClassifier) Name() string { return "blocking" }
