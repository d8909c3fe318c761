package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/careroute/backend/internal/adapters/analytics"
	"github.com/zatekoja/careroute/backend/internal/adapters/cache"
	"github.com/zatekoja/careroute/backend/internal/adapters/database"
	"github.com/zatekoja/careroute/backend/internal/adapters/events"
	"github.com/zatekoja/careroute/backend/internal/adapters/search"
	"github.com/zatekoja/careroute/backend/internal/api/handlers"
	"github.com/zatekoja/careroute/backend/internal/api/middleware"
	"github.com/zatekoja/careroute/backend/internal/api/routes"
	"github.com/zatekoja/careroute/backend/internal/application/services"
	"github.com/zatekoja/careroute/backend/internal/catalog"
	"github.com/zatekoja/careroute/backend/internal/domain/providers"
	"github.com/zatekoja/careroute/backend/internal/domain/repositories"
	"github.com/zatekoja/careroute/backend/internal/infrastructure/clients/openai"
	"github.com/zatekoja/careroute/backend/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/careroute/backend/internal/infrastructure/clients/redis"
	"github.com/zatekoja/careroute/backend/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/careroute/backend/internal/infrastructure/observability"
	"github.com/zatekoja/careroute/backend/pkg/config"
	"github.com/zatekoja/careroute/backend/pkg/geo"
	"github.com/zatekoja/careroute/backend/pkg/retry"
	"github.com/zatekoja/careroute/backend/pkg/secrets"
)

func main() {
	// Vault runs before config.Load so fetched credentials reach it
	vaultCtx, vaultCancel := context.WithTimeout(context.Background(), 15*time.Second)
	vaultResult, vaultErr := secrets.ApplyVaultSecrets(vaultCtx, secrets.LoadVaultConfigFromEnv(), retry.DefaultConfig())
	vaultCancel()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Environment)

	if vaultErr != nil {
		log.Warn().Err(vaultErr).Str("path", vaultResult.Path).Msg("vault secrets not loaded, using environment")
	} else if vaultResult.Enabled {
		log.Info().Strs("loaded", vaultResult.Loaded).Strs("skipped", vaultResult.Skipped).Msg("vault secrets applied")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, &cfg.OTEL)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Catalogs never fail to load; problems are reported by /health
	symptomCatalog := catalog.LoadSymptoms(cfg.Catalog.SymptomsPath)
	facilityCatalog := catalog.LoadFacilities(cfg.Catalog.FacilitiesPath)

	dependencies := map[string]handlers.Pinger{
		"postgres":  nil,
		"redis":     nil,
		"typesense": nil,
	}

	// Optional backends
	var pgClient *postgres.Client
	if cfg.Database.Enabled() {
		pgClient, err = postgres.NewClient(ctx, &cfg.Database)
		if err != nil {
			log.Warn().Err(err).Msg("triage history disabled: PostgreSQL unavailable")
			pgClient = nil
		} else {
			defer pgClient.Close()
			if err := pgClient.Migrate(ctx); err != nil {
				log.Error().Err(err).Msg("failed to migrate triage history schema")
			}
			dependencies["postgres"] = pgClient
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("continuing without Redis")
			redisClient = nil
		} else {
			defer redisClient.Close()
			dependencies["redis"] = redisClient
		}
	}

	var searchRepo repositories.FacilitySearchRepository
	if cfg.Typesense.URL != "" {
		tsClient, err := typesense.NewClient(ctx, &cfg.Typesense)
		if err != nil {
			log.Warn().Err(err).Msg("facility suggestions fall back to the catalog")
		} else {
			if err := tsClient.InitSchema(ctx); err != nil {
				log.Warn().Err(err).Msg("failed to init Typesense schema")
			}
			searchRepo = search.NewTypesenseAdapter(tsClient)
			dependencies["typesense"] = tsClient
		}
	}

	var (
		cacheProvider providers.CacheProvider
		analyticsRepo repositories.AnalyticsRepository
	)
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient, "careroute:")
		analyticsRepo = analytics.NewRedisAdapter(redisClient)
	} else {
		cacheProvider = cache.NewMemoryAdapter(0)
		analyticsRepo = analytics.NewMemoryAdapter()
	}

	// Classifier
	analysisOpts := []services.AnalysisOption{}
	if cfg.OpenAI.APIKey != "" {
		openaiClient, err := openai.NewClient(&cfg.OpenAI)
		if err != nil {
			log.Warn().Err(err).Msg("classifier disabled")
		} else {
			classifier := cache.NewCachedClassifier(openaiClient, cacheProvider, cfg.Triage.ClassifierCacheTTL)
			analysisOpts = append(analysisOpts,
				services.WithClassifier(classifier, cfg.Triage.ClassifierTimeout, cfg.Triage.ClassifierMinConfidence))
			log.Info().Str("classifier", classifier.Name()).Msg("classifier enabled")
		}
	}

	// Triage events
	publisher, err := events.NewPublisher(&cfg.Events, redisClient)
	if err != nil {
		log.Warn().Err(err).Str("backend", cfg.Events.Backend).Msg("triage events disabled")
		publisher = events.NoopPublisher{}
	}
	defer publisher.Close()

	var eventStream *handlers.EventStreamHandler
	subscriber, err := events.NewSubscriber(&cfg.Events, redisClient)
	if err != nil {
		log.Warn().Err(err).Msg("event stream disabled")
	} else if subscriber != nil {
		if closer, ok := subscriber.(interface{ Close() error }); ok {
			defer closer.Close()
		}
		eventStream = handlers.NewEventStreamHandler(subscriber)
		if err := eventStream.Start(ctx); err != nil {
			log.Warn().Err(err).Msg("event stream disabled")
			eventStream = nil
		}
	}

	// Services
	defaultLocation := geo.Point{Latitude: cfg.Triage.DefaultLatitude, Longitude: cfg.Triage.DefaultLongitude}
	analysisService := services.NewSymptomAnalysisService(symptomCatalog, analysisOpts...)
	rankingService := services.NewFacilityRankingService(facilityCatalog, defaultLocation, cfg.Triage.DefaultMaxDistanceKm)
	facilityService := services.NewFacilityService(facilityCatalog, searchRepo)
	analyticsService := services.NewAnalyticsService(analyticsRepo)

	triageOpts := []services.TriageOption{
		services.WithAnalytics(analyticsService),
		services.WithEventPublisher(publisher),
	}
	var historyService *services.TriageHistoryService
	if pgClient != nil {
		historyService = services.NewTriageHistoryService(database.NewTriageHistoryAdapter(pgClient))
		triageOpts = append(triageOpts, services.WithHistory(historyService))
	}
	triageService := services.NewTriageService(analysisService, rankingService, triageOpts...)

	// Handlers
	router := routes.NewRouter(
		handlers.NewTriageHandler(triageService, historyService, metrics),
		handlers.NewFacilityHandler(rankingService, facilityService, analyticsService, metrics),
		handlers.NewAnalyticsHandler(analyticsService),
		handlers.NewHealthHandler(
			analysisService.CatalogStatus,
			facilityService.CatalogStatus,
			analysisService.ClassifierEnabled(),
			dependencies,
		),
		eventStream,
		middleware.NewCacheMiddleware(cacheProvider, cfg.Server.CacheTTL, metrics),
		cfg.Server.AllowedOrigins,
		metrics,
	)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           router.SetupRoutes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// No write timeout: /api/events/stream holds its response open
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", serverAddr).
			Int("symptoms", symptomCatalog.Len()).
			Int("facilities", facilityCatalog.Len()).
			Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	// Stop the event stream first so open SSE responses return
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	log.Info().Msg("server stopped")
}
