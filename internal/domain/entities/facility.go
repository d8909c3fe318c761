package entities

import (
	"strings"

	"github.com/zatekoja/careroute/backend/pkg/geo"
)

// Facility types seen in the reference catalog
const (
	FacilityTypeGovernment = "Government"
	FacilityTypePrivate    = "Private"
)

// Facility represents a healthcare facility in the catalog
type Facility struct {
	ID                 string    `json:"id" yaml:"id"`
	Name               string    `json:"name" yaml:"name"`
	Location           geo.Point `json:"location" yaml:"location"`
	Type               string    `json:"type" yaml:"type"`
	Specialties        []string  `json:"specialties" yaml:"specialties"`
	EmergencyAvailable bool      `json:"emergency_available" yaml:"emergency_available"`
	Open24x7           bool      `json:"open_24_7" yaml:"open_24_7"`
	Rating             float64   `json:"rating" yaml:"rating"`
	Address            string    `json:"address,omitempty" yaml:"address,omitempty"`
	PhoneNumber        string    `json:"phone,omitempty" yaml:"phone,omitempty"`
}

// HasSpecialty reports whether the facility lists name, ignoring case.
func (f *Facility) HasSpecialty(name string) bool {
	for _, s := range f.Specialties {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}

// ScoreBreakdown holds the named components of a facility match score.
// Components sum to the total before clamping to [0, 100].
type ScoreBreakdown struct {
	Specialty    float64 `json:"specialty"`
	Distance     float64 `json:"distance"`
	Rating       float64 `json:"rating"`
	Emergency    float64 `json:"emergency"`
	Availability float64 `json:"availability"`
}

// Total returns the sum of the components.
func (b ScoreBreakdown) Total() float64 {
	return b.Specialty + b.Distance + b.Rating + b.Emergency + b.Availability
}

// RankedFacility is a facility evaluated against one request.
type RankedFacility struct {
	Facility
	DistanceKm           float64         `json:"distance_km"`
	EstimatedTimeMinutes int             `json:"estimated_time_minutes"`
	MatchScore           float64         `json:"match_score,omitempty"`
	ScoreBreakdown       *ScoreBreakdown `json:"score_breakdown,omitempty"`
}

// FacilityFilters narrows a facility search
type FacilityFilters struct {
	Type          string   `json:"type,omitempty"`
	EmergencyOnly bool     `json:"emergency_only,omitempty"`
	Open24x7      bool     `json:"open_24_7,omitempty"`
	MaxDistanceKm *float64 `json:"max_distance,omitempty"`
}

// FacilitySearchRequest is the input to facility ranking
type FacilitySearchRequest struct {
	Specialties []string        `json:"specialties"`
	Location    *geo.Point      `json:"location,omitempty"`
	Urgency     UrgencyLevel    `json:"urgency"`
	Filters     FacilityFilters `json:"filters"`
}

// CatalogStatistics summarizes the facility catalog
type CatalogStatistics struct {
	TotalFacilities      int            `json:"total_hospitals"`
	EmergencyFacilities  int            `json:"emergency_hospitals"`
	Open24x7Facilities   int            `json:"open_24_7_hospitals"`
	PrivateFacilities    int            `json:"private_hospitals"`
	GovernmentFacilities int            `json:"government_hospitals"`
	ByType               map[string]int `json:"by_type"`
	TotalSpecialties     int            `json:"total_specialties"`
	Specialties          []string       `json:"specialties"`
}
