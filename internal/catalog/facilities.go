package catalog

import (
	"sort"
	"strings"

	"github.com/zatekoja/careroute/backend/internal/domain/entities"
	"github.com/zatekoja/careroute/backend/pkg/geo"
)

// DefaultRating is assumed for facilities without a rating
const DefaultRating = 3.0

type rawLocation struct {
	Lat *float64 `json:"lat" yaml:"lat"`
	Lng *float64 `json:"lng" yaml:"lng"`
}

type rawFacility struct {
	ID                 string       `json:"id" yaml:"id"`
	Name               string       `json:"name" yaml:"name"`
	Location           *rawLocation `json:"location" yaml:"location"`
	Type               string       `json:"type" yaml:"type"`
	Specialties        []string     `json:"specialties" yaml:"specialties"`
	EmergencyAvailable bool         `json:"emergency_available" yaml:"emergency_available"`
	Open24x7           bool         `json:"open_24_7" yaml:"open_24_7"`
	Rating             *float64     `json:"rating" yaml:"rating"`
	Address            string       `json:"address" yaml:"address"`
	Phone              string       `json:"phone" yaml:"phone"`
}

// FacilityCatalog is the immutable, ordered set of facility records
type FacilityCatalog struct {
	facilities []*entities.Facility
	byID       map[string]*entities.Facility
	status     Status
}

// NewFacilityCatalog builds a catalog from records already in memory
func NewFacilityCatalog(records []entities.Facility) *FacilityCatalog {
	raws := make([]rawFacility, 0, len(records))
	for _, r := range records {
		lat, lng, rating := r.Location.Latitude, r.Location.Longitude, r.Rating
		raws = append(raws, rawFacility{
			ID:                 r.ID,
			Name:               r.Name,
			Location:           &rawLocation{Lat: &lat, Lng: &lng},
			Type:               r.Type,
			Specialties:        r.Specialties,
			EmergencyAvailable: r.EmergencyAvailable,
			Open24x7:           r.Open24x7,
			Rating:             &rating,
			Address:            r.Address,
			Phone:              r.PhoneNumber,
		})
	}
	return buildFacilityCatalog(raws, Status{Source: "memory"})
}

// LoadFacilities reads a JSON or YAML facility catalog. The records may sit
// under "hospitals" or "facilities". It never fails.
func LoadFacilities(path string) *FacilityCatalog {
	doc := listDocument[rawFacility]{keys: []string{"hospitals", "facilities"}}
	status, err := readDocument(path, &doc)
	if err != nil {
		return buildFacilityCatalog(nil, status)
	}
	return buildFacilityCatalog(doc.items, status)
}

func buildFacilityCatalog(raws []rawFacility, status Status) *FacilityCatalog {
	c := &FacilityCatalog{
		facilities: make([]*entities.Facility, 0, len(raws)),
		byID:       make(map[string]*entities.Facility, len(raws)),
	}

	for i, raw := range raws {
		f, ok := normalizeFacility(i, raw, &status)
		if !ok {
			continue
		}
		if _, dup := c.byID[f.ID]; dup {
			status.warnf("facility %d: duplicate id %q dropped", i, f.ID)
			continue
		}
		c.byID[f.ID] = f
		c.facilities = append(c.facilities, f)
	}

	finalize(&status, len(c.facilities))
	c.status = status
	return c
}

func normalizeFacility(i int, raw rawFacility, status *Status) (*entities.Facility, bool) {
	f := &entities.Facility{
		ID:                 strings.TrimSpace(raw.ID),
		Name:               strings.TrimSpace(raw.Name),
		Type:               strings.TrimSpace(raw.Type),
		Specialties:        dedupeStrings(raw.Specialties),
		EmergencyAvailable: raw.EmergencyAvailable,
		Open24x7:           raw.Open24x7,
		Address:            strings.TrimSpace(raw.Address),
		PhoneNumber:        strings.TrimSpace(raw.Phone),
	}

	if f.ID == "" {
		if f.Name == "" {
			status.warnf("facility %d: no id or name, dropped", i)
			return nil, false
		}
		f.ID = f.Name
		status.warnf("facility %d: missing id, using name %q", i, f.Name)
	}
	if f.Name == "" {
		f.Name = f.ID
	}

	if raw.Location == nil || raw.Location.Lat == nil || raw.Location.Lng == nil {
		status.warnf("facility %q: missing coordinate, dropped", f.ID)
		return nil, false
	}
	f.Location = geo.Point{Latitude: *raw.Location.Lat, Longitude: *raw.Location.Lng}
	if !f.Location.Valid() {
		status.warnf("facility %q: invalid coordinate (%f, %f), dropped", f.ID, f.Location.Latitude, f.Location.Longitude)
		return nil, false
	}

	switch {
	case raw.Rating == nil:
		f.Rating = DefaultRating
	case *raw.Rating < 0:
		status.warnf("facility %q: rating %.2f clamped to 0", f.ID, *raw.Rating)
		f.Rating = 0
	case *raw.Rating > 5:
		status.warnf("facility %q: rating %.2f clamped to 5", f.ID, *raw.Rating)
		f.Rating = 5
	default:
		f.Rating = *raw.Rating
	}

	return f, true
}

// All returns every record in catalog order. The slice must not be modified.
func (c *FacilityCatalog) All() []*entities.Facility {
	return c.facilities
}

// Len returns the number of records
func (c *FacilityCatalog) Len() int {
	return len(c.facilities)
}

// Get returns the record with id, if present.
func (c *FacilityCatalog) Get(id string) (*entities.Facility, bool) {
	f, ok := c.byID[id]
	return f, ok
}

// BySpecialty returns facilities listing the specialty, ignoring case, in
// catalog order.
func (c *FacilityCatalog) BySpecialty(name string) []*entities.Facility {
	out := make([]*entities.Facility, 0)
	name = strings.TrimSpace(name)
	if name == "" {
		return out
	}
	for _, f := range c.facilities {
		if f.HasSpecialty(name) {
			out = append(out, f)
		}
	}
	return out
}

// Statistics counts the catalog by type and capability
func (c *FacilityCatalog) Statistics() *entities.CatalogStatistics {
	stats := &entities.CatalogStatistics{
		TotalFacilities: len(c.facilities),
		ByType:          make(map[string]int),
	}

	specialties := make(map[string]struct{})
	for _, f := range c.facilities {
		if f.EmergencyAvailable {
			stats.EmergencyFacilities++
		}
		if f.Open24x7 {
			stats.Open24x7Facilities++
		}
		switch f.Type {
		case entities.FacilityTypePrivate:
			stats.PrivateFacilities++
		case entities.FacilityTypeGovernment:
			stats.GovernmentFacilities++
		}
		if f.Type != "" {
			stats.ByType[f.Type]++
		}
		for _, s := range f.Specialties {
			specialties[s] = struct{}{}
		}
	}

	stats.Specialties = make([]string, 0, len(specialties))
	for s := range specialties {
		stats.Specialties = append(stats.Specialties, s)
	}
	sort.Strings(stats.Specialties)
	stats.TotalSpecialties = len(stats.Specialties)
	return stats
}

// Status reports how the catalog was loaded
func (c *FacilityCatalog) Status() Status {
	return c.status
}
