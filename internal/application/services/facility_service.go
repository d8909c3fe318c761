package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/careroute/backend/internal/catalog"
	"github.com/zatekoja/careroute/backend/internal/domain/entities"
	"github.com/zatekoja/careroute/backend/internal/domain/repositories"
)

const (
	DefaultSuggestLimit = 10
	MaxSuggestLimit     = 25
)

// FacilityService handles catalog lookups for facilities
type FacilityService struct {
	catalog    *catalog.FacilityCatalog
	searchRepo repositories.FacilitySearchRepository
}

// NewFacilityService creates a new facility service. searchRepo may be nil,
// in which case suggestions are served from the catalog.
func NewFacilityService(c *catalog.FacilityCatalog, searchRepo repositories.FacilitySearchRepository) *FacilityService {
	return &FacilityService{
		catalog:    c,
		searchRepo: searchRepo,
	}
}

// GetByID retrieves a facility by ID
func (s *FacilityService) GetByID(id string) (*entities.Facility, bool) {
	return s.catalog.Get(strings.TrimSpace(id))
}

// BySpecialty lists facilities offering the specialty
func (s *FacilityService) BySpecialty(specialty string) []*entities.Facility {
	return s.catalog.BySpecialty(specialty)
}

// Statistics summarizes the catalog
func (s *FacilityService) Statistics() *entities.CatalogStatistics {
	return s.catalog.Statistics()
}

// CatalogStatus reports how the facility catalog was loaded
func (s *FacilityService) CatalogStatus() catalog.Status {
	return s.catalog.Status()
}

// Suggest returns facilities whose names match query, using the search
// engine if available and falling back to the catalog
func (s *FacilityService) Suggest(ctx context.Context, query string, limit int) []*entities.Facility {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*entities.Facility{}
	}
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}
	limit = min(limit, MaxSuggestLimit)

	if s.searchRepo != nil {
		ids, err := s.searchRepo.Suggest(ctx, query, limit)
		if err == nil {
			out := make([]*entities.Facility, 0, len(ids))
			for _, id := range ids {
				// The index may lag the catalog; unknown ids are skipped.
				if f, ok := s.catalog.Get(id); ok {
					out = append(out, f)
				}
			}
			return out
		}
		log.Warn().Err(err).Str("query", query).Msg("facility search unavailable, using catalog")
	}

	q := strings.ToLower(query)
	out := make([]*entities.Facility, 0, limit)
	for _, f := range s.catalog.All() {
		if strings.Contains(strings.ToLower(f.Name), q) {
			out = append(out, f)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

// Reindex pushes every catalog facility to the search engine. It returns the
// number indexed; individual failures are logged and skipped.
func (s *FacilityService) Reindex(ctx context.Context) (int, error) {
	if s.searchRepo == nil {
		return 0, nil
	}
	indexed := 0
	for _, f := range s.catalog.All() {
		if err := ctx.Err(); err != nil {
			return indexed, err
		}
		if err := s.searchRepo.Index(ctx, f); err != nil {
			log.Warn().Err(err).Str("facility_id", f.ID).Msg("failed to index facility")
			continue
		}
		indexed++
	}
	return indexed, nil
}
