package repositories

import (
	"context"

	"github.com/zatekoja/careroute/backend/internal/domain/entities"
)

// FacilitySearchRepository defines the interface for facility name search (e.g. Typesense)
type FacilitySearchRepository interface {
	// Suggest returns facility ids whose names match the prefix query, best first
	Suggest(ctx context.Context, query string, limit int) ([]string, error)

	// Index upserts a facility document
	Index(ctx context.Context, facility *entities.Facility) error

	// Delete removes a facility from the index
	Delete(ctx context.Context, id string) error
}
