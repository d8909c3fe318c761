package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/careroute/backend/internal/catalog"
	"github.com/zatekoja/careroute/backend/internal/domain/entities"
)

func facilityCatalog() *catalog.FacilityCatalog {
	apollo := facilityAt("h1", north(1), true, true, 4.5, "Cardiology", "Neurology")
	apollo.Name = "Apollo Hospital"
	victoria := facilityAt("h2", north(2), true, true, 3.8, "General Medicine")
	victoria.Name = "Victoria Hospital"
	victoria.Type = entities.FacilityTypeGovernment
	clinic := facilityAt("h3", north(3), false, false, 4.0, "Dermatology")
	clinic.Name = "Skin Clinic"
	return catalog.NewFacilityCatalog([]entities.Facility{apollo, victoria, clinic})
}

func TestFacilityService_Lookups(t *testing.T) {
	svc := NewFacilityService(facilityCatalog(), nil)

	f, ok := svc.GetByID(" h2 ")
	require.True(t, ok)
	assert.Equal(t, "Victoria Hospital", f.Name)

	_, ok = svc.GetByID("missing")
	assert.False(t, ok)

	cardio := svc.BySpecialty("cardiology")
	require.Len(t, cardio, 1)
	assert.Equal(t, "h1", cardio[0].ID)

	stats := svc.Statistics()
	assert.Equal(t, 3, stats.TotalFacilities)
	assert.Equal(t, 2, stats.EmergencyFacilities)
	assert.Equal(t, 1, stats.GovernmentFacilities)
	assert.Equal(t, 2, stats.PrivateFacilities)
	assert.Equal(t, []string{"Cardiology", "Dermatology", "General Medicine", "Neurology"}, stats.Specialties)
}

func TestFacilityService_SuggestUsesSearchEngine(t *testing.T) {
	repo := new(mockFacilitySearchRepo)
	repo.On("Suggest", mock.Anything, "hosp", DefaultSuggestLimit).Return([]string{"h2", "stale", "h1"}, nil)

	svc := NewFacilityService(facilityCatalog(), repo)
	got := svc.Suggest(context.Background(), "hosp", 0)

	require.Len(t, got, 2)
	assert.Equal(t, "h2", got[0].ID)
	assert.Equal(t, "h1", got[1].ID)
	repo.AssertExpectations(t)
}

func TestFacilityService_SuggestFallsBackToCatalog(t *testing.T) {
	repo := new(mockFacilitySearchRepo)
	repo.On("Suggest", mock.Anything, "HOSPITAL", MaxSuggestLimit).Return(nil, errors.New("connection refused"))

	svc := NewFacilityService(facilityCatalog(), repo)
	got := svc.Suggest(context.Background(), "HOSPITAL", 1000)

	require.Len(t, got, 2)
	assert.Equal(t, "h1", got[0].ID)
	assert.Equal(t, "h2", got[1].ID)

	assert.Empty(t, svc.Suggest(context.Background(), "  ", 5))
}

func TestFacilityService_SuggestWithoutSearchEngine(t *testing.T) {
	svc := NewFacilityService(facilityCatalog(), nil)
	got := svc.Suggest(context.Background(), "clinic", 5)
	require.Len(t, got, 1)
	assert.Equal(t, "h3", got[0].ID)
}

func TestFacilityService_Reindex(t *testing.T) {
	repo := new(mockFacilitySearchRepo)
	repo.On("Index", mock.Anything, mock.MatchedBy(func(f *entities.Facility) bool { return f.ID == "h2" })).
		Return(errors.New("bad document")).Once()
	repo.On("Index", mock.Anything, mock.Anything).Return(nil)

	svc := NewFacilityService(facilityCatalog(), repo)
	n, err := svc.Reindex(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	repo.AssertNumberOfCalls(t, "Index", 3)

	n, err = NewFacilityService(facilityCatalog(), nil).Reindex(context.Background())
	assert.NoError(t, err)
	assert.Zero(t, n)
}
