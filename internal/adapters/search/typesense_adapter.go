package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/zatekoja/careroute/backend/internal/domain/entities"
	"github.com/zatekoja/careroute/backend/internal/domain/repositories"
	tsclient "github.com/zatekoja/careroute/backend/internal/infrastructure/clients/typesense"
)

// MaxIndexedTags bounds the tag list stored per document
const MaxIndexedTags = 50

// TypesenseAdapter implements facility name search using Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

// Ensure TypesenseAdapter implements FacilitySearchRepository
var _ repositories.FacilitySearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// Suggest returns ids of facilities whose name or tags match the query
// prefix, in relevance order.
func (a *TypesenseAdapter) Suggest(ctx context.Context, query string, limit int) ([]string, error) {
	params := &api.SearchCollectionParams{
		Q:       pointer.String(query),
		QueryBy: pointer.String("name,tags"),
		PerPage: pointer.Int(limit),
	}

	result, err := a.client.Client().Collection(tsclient.FacilitiesCollection).Documents().Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to search facilities: %w", err)
	}
	if result.Hits == nil {
		return []string{}, nil
	}

	ids := make([]string, 0, len(*result.Hits))
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		if id, ok := (*hit.Document)["id"].(string); ok && id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Index upserts a facility
func (a *TypesenseAdapter) Index(ctx context.Context, facility *entities.Facility) error {
	_, err := a.client.Client().Collection(tsclient.FacilitiesCollection).Documents().Upsert(ctx, facilityDocument(facility))
	if err != nil {
		return fmt.Errorf("failed to index facility %s: %w", facility.ID, err)
	}
	return nil
}

// Delete removes a facility from index
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(tsclient.FacilitiesCollection).Document(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete facility from index: %w", err)
	}
	return nil
}

func facilityDocument(f *entities.Facility) map[string]interface{} {
	specialties := f.Specialties
	if specialties == nil {
		specialties = []string{}
	}
	return map[string]interface{}{
		"id":                  f.ID,
		"name":                f.Name,
		"facility_type":       f.Type,
		"specialties":         specialties,
		"location":            []float64{f.Location.Latitude, f.Location.Longitude},
		"rating":              f.Rating,
		"emergency_available": f.EmergencyAvailable,
		"open_24_7":           f.Open24x7,
		"tags":                buildFacilityTags(f),
	}
}

// buildFacilityTags collects lowercase search terms for a facility so a
// query like "cardio" or "government" still finds it by name search.
func buildFacilityTags(f *entities.Facility) []string {
	if f == nil {
		return nil
	}

	seen := make(map[string]struct{})
	tags := make([]string, 0, len(f.Specialties)+3)
	add := func(values ...string) {
		for _, v := range values {
			v = strings.ToLower(strings.TrimSpace(v))
			if v == "" || len(tags) >= MaxIndexedTags {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			tags = append(tags, v)
		}
	}

	add(f.Name, f.Type)
	add(f.Specialties...)
	if f.EmergencyAvailable {
		add("emergency")
	}
	if f.Open24x7 {
		add("24x7")
	}
	return tags
}
