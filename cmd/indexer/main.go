package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/careroute/backend/internal/adapters/search"
	"github.com/zatekoja/careroute/backend/internal/application/services"
	"github.com/zatekoja/careroute/backend/internal/catalog"
	"github.com/zatekoja/careroute/backend/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/careroute/backend/internal/infrastructure/observability"
	"github.com/zatekoja/careroute/backend/pkg/config"
	"github.com/zatekoja/careroute/backend/pkg/retry"
	"github.com/zatekoja/careroute/backend/pkg/secrets"
)

func main() {
	var reset bool
	var intervalFlag string
	flag.BoolVar(&reset, "reset", false, "delete existing Typesense collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	vaultCtx, vaultCancel := context.WithTimeout(context.Background(), 15*time.Second)
	_, vaultErr := secrets.ApplyVaultSecrets(vaultCtx, secrets.LoadVaultConfigFromEnv(), retry.DefaultConfig())
	vaultCancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	observability.InitLogger("careroute-indexer", cfg.Environment)
	if vaultErr != nil {
		log.Warn().Err(vaultErr).Msg("vault secrets not loaded, using environment")
	}

	if cfg.Typesense.URL == "" {
		log.Fatal().Msg("TYPESENSE_URL is required")
	}

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil {
			log.Fatal().Err(err).Str("interval", intervalValue).Msg("invalid interval")
		}
		if interval <= 0 {
			log.Fatal().Msg("interval must be greater than zero")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, cfg, reset || os.Getenv("RESET_TYPESENSE") == "true"); err != nil {
			log.Error().Err(err).Msg("reindex failed")
		}

		if interval <= 0 {
			break
		}

		reset = false
		log.Info().Dur("next_in", interval).Msg("reindex complete")

		select {
		case <-ctx.Done():
			log.Info().Msg("reindexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

// indexOnce reloads the facility catalog from disk so edits between runs
// are picked up, then upserts every facility.
func indexOnce(ctx context.Context, cfg *config.Config, reset bool) error {
	facilities := catalog.LoadFacilities(cfg.Catalog.FacilitiesPath)
	if status := facilities.Status(); !status.Healthy() {
		log.Warn().Str("state", string(status.State)).Str("reason", status.Reason).Msg("facility catalog is not active")
	}

	tsClient, err := typesense.NewClient(ctx, &cfg.Typesense)
	if err != nil {
		return err
	}

	if reset {
		if err := tsClient.DropSchema(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to reset collection")
		}
	}
	if err := tsClient.InitSchema(ctx); err != nil {
		return err
	}

	svc := services.NewFacilityService(facilities, search.NewTypesenseAdapter(tsClient))
	indexed, err := svc.Reindex(ctx)
	if err != nil {
		return err
	}

	log.Info().Int("indexed", indexed).Int("total", facilities.Len()).Msg("indexing complete")
	return nil
}
