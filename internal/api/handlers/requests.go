package handlers

import (
	"strings"

	"github.com/zatekoja/careroute/backend/internal/application/services"
	"github.com/zatekoja/careroute/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/careroute/backend/pkg/errors"
	"github.com/zatekoja/careroute/backend/pkg/geo"
)

type locationRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// point converts an optional location. Both coordinates are required once a
// location object is present; range checking is left to the ranking, which
// falls back to the default coordinate.
func (l *locationRequest) point() (*geo.Point, error) {
	if l == nil {
		return nil, nil
	}
	if l.Lat == nil || l.Lng == nil {
		return nil, apperrors.NewValidationError("location must include lat and lng coordinates")
	}
	return &geo.Point{Latitude: *l.Lat, Longitude: *l.Lng}, nil
}

type filtersRequest struct {
	Type          string   `json:"type"`
	EmergencyOnly bool     `json:"emergency_only"`
	Open24x7      bool     `json:"open_24_7"`
	Availability  bool     `json:"availability_24_7"`
	MaxDistance   *float64 `json:"max_distance"`
}

func (f *filtersRequest) filters() (entities.FacilityFilters, error) {
	if f == nil {
		return entities.FacilityFilters{}, nil
	}
	if f.MaxDistance != nil && *f.MaxDistance <= 0 {
		return entities.FacilityFilters{}, apperrors.NewValidationError("max_distance must be positive")
	}
	return entities.FacilityFilters{
		Type:          strings.TrimSpace(f.Type),
		EmergencyOnly: f.EmergencyOnly,
		Open24x7:      f.Open24x7 || f.Availability,
		MaxDistanceKm: f.MaxDistance,
	}, nil
}

type analyzeRequest struct {
	Symptoms string `json:"symptoms"`
	Language string `json:"language"`
}

// validate returns the trimmed text and parsed language
func (a *analyzeRequest) validate() (string, entities.Language, error) {
	text := strings.TrimSpace(a.Symptoms)
	if text == "" {
		return "", "", apperrors.NewValidationError("symptoms are required")
	}

	lang := entities.LanguageEnglish
	if a.Language != "" {
		parsed, ok := services.ParseLanguage(a.Language)
		if !ok {
			return "", "", apperrors.NewValidationError("unsupported language, use one of: en, kn, hi, ta")
		}
		lang = parsed
	}

	if len([]rune(text)) < services.MinSymptomTextLength {
		return "", "", apperrors.NewValidationError("please describe symptoms in at least 3 characters")
	}
	return text, lang, nil
}

type hospitalSearchRequest struct {
	Specialties []string         `json:"specialties"`
	Location    *locationRequest `json:"location"`
	Urgency     string           `json:"urgency"`
	Filters     *filtersRequest  `json:"filters"`
}

func (h *hospitalSearchRequest) searchRequest() (entities.FacilitySearchRequest, error) {
	urgency := entities.UrgencyMedium
	if h.Urgency != "" {
		parsed, ok := entities.ParseUrgency(h.Urgency)
		if !ok {
			return entities.FacilitySearchRequest{}, apperrors.NewValidationError("urgency must be HIGH, MEDIUM, or LOW")
		}
		urgency = parsed
	}

	location, err := h.Location.point()
	if err != nil {
		return entities.FacilitySearchRequest{}, err
	}
	filters, err := h.Filters.filters()
	if err != nil {
		return entities.FacilitySearchRequest{}, err
	}

	return entities.FacilitySearchRequest{
		Specialties: h.Specialties,
		Location:    location,
		Urgency:     urgency,
		Filters:     filters,
	}, nil
}

type emergencyRequest struct {
	Location   *locationRequest `json:"location"`
	MaxResults *int             `json:"max_results"`
}

func (e *emergencyRequest) validate() (*geo.Point, int, error) {
	if e.Location == nil {
		return nil, 0, apperrors.NewValidationError("location is required")
	}
	location, err := e.Location.point()
	if err != nil {
		return nil, 0, err
	}

	maxResults := services.DefaultEmergencyResults
	if e.MaxResults != nil {
		maxResults = *e.MaxResults
		if maxResults < services.MinEmergencyResults || maxResults > services.MaxEmergencyResults {
			return nil, 0, apperrors.NewValidationError("max_results must be an integer between 1 and 20")
		}
	}
	return location, maxResults, nil
}

type combinedSearchRequest struct {
	analyzeRequest
	Location *locationRequest `json:"location"`
	Filters  *filtersRequest  `json:"filters"`
}
