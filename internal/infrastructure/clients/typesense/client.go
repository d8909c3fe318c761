package typesense

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/typesense/typesense-go/v2/typesense"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/zatekoja/careroute/backend/pkg/config"
	"github.com/zatekoja/careroute/backend/pkg/retry"
)

const (
	FacilitiesCollection = "facilities"
)

// Client represents a Typesense client
type Client struct {
	client *typesense.Client
}

// NewClient creates a new Typesense client with exponential backoff retry
func NewClient(ctx context.Context, cfg *config.TypesenseConfig) (*Client, error) {
	client := typesense.NewClient(
		typesense.WithServer(cfg.URL),
		typesense.WithAPIKey(cfg.APIKey),
		typesense.WithConnectionTimeout(5*time.Second),
	)

	err := retry.DoWithLog(ctx, retry.DefaultConfig(), "Typesense", log.Logger, func() error {
		healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		ok, err := client.Health(healthCtx, 2*time.Second)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("typesense reports unhealthy")
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Typesense after retries: %w", err)
	}

	log.Info().Str("url", cfg.URL).Msg("connected to Typesense")
	return &Client{client: client}, nil
}

// NewFromClient wraps an existing typesense client without a health check
func NewFromClient(client *typesense.Client) *Client {
	return &Client{client: client}
}

// Client returns the underlying Typesense client
func (c *Client) Client() *typesense.Client {
	return c.client
}

// Ping reports whether the server answers its health endpoint
func (c *Client) Ping(ctx context.Context) error {
	ok, err := c.client.Health(ctx, 2*time.Second)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("typesense reports unhealthy")
	}
	return nil
}

// InitSchema ensures the facilities collection exists
func (c *Client) InitSchema(ctx context.Context) error {
	collections, err := c.client.Collections().Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve collections: %w", err)
	}

	for _, col := range collections {
		if col.Name == FacilitiesCollection {
			log.Debug().Str("collection", FacilitiesCollection).Msg("typesense collection already exists")
			return nil
		}
	}

	if _, err := c.client.Collections().Create(ctx, FacilitiesSchema()); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Info().Str("collection", FacilitiesCollection).Msg("created typesense collection")
	return nil
}

// DropSchema deletes the facilities collection so the next InitSchema
// recreates it from FacilitiesSchema
func (c *Client) DropSchema(ctx context.Context) error {
	if _, err := c.client.Collection(FacilitiesCollection).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	log.Info().Str("collection", FacilitiesCollection).Msg("deleted typesense collection")
	return nil
}

// FacilitiesSchema describes the indexed facility document
func FacilitiesSchema() *api.CollectionSchema {
	return &api.CollectionSchema{
		Name: FacilitiesCollection,
		Fields: []api.Field{
			{
				Name: "id",
				Type: "string",
			},
			{
				Name: "name",
				Type: "string",
			},
			{
				Name:  "facility_type",
				Type:  "string",
				Facet: pointer.True(),
			},
			{
				Name:  "specialties",
				Type:  "string[]",
				Facet: pointer.True(),
			},
			{
				Name: "location",
				Type: "geopoint",
			},
			{
				Name:  "rating",
				Type:  "float",
				Facet: pointer.True(),
			},
			{
				Name:  "emergency_available",
				Type:  "bool",
				Facet: pointer.True(),
			},
			{
				Name: "open_24_7",
				Type: "bool",
			},
			{
				Name:     "tags",
				Type:     "string[]",
				Optional: pointer.True(),
			},
		},
		DefaultSortingField: pointer.String("rating"),
	}
}
